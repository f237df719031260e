package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

func (h *handlers) listSemesters(c *gin.Context) {
	semesters, err := h.svc.Metadata.Semesters(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, semesters)
}

func (h *handlers) listMetadata(kind domain.MetadataKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		semester, ok := h.queryInt64(c, "semester")
		if !ok {
			return
		}
		if semester <= 0 {
			h.fail(c, fmt.Errorf("%w: semester is required", domain.ErrModelValidation))
			return
		}
		items, err := h.svc.Metadata.Metadata(c.Request.Context(), kind, semester)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (h *handlers) listExamSets(c *gin.Context) {
	semester, ok := h.queryInt64(c, "semester")
	if !ok {
		return
	}
	sets, err := h.svc.Metadata.ExamSets(c.Request.Context(), semester)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sets)
}

func (h *handlers) getExamSet(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	set, err := h.svc.Metadata.ExamSet(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *handlers) examSetQuestions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	h.selectAndRespond(c, domain.SelectionParams{SetID: id})
}

func (h *handlers) createExamSet(c *gin.Context) {
	var in domain.ExamSet
	if !h.bind(c, &in) {
		return
	}
	set, err := h.svc.Metadata.CreateExamSet(c.Request.Context(), viewer(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *handlers) patchExamSet(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var patch app.ExamSetPatch
	if !h.bind(c, &patch) {
		return
	}
	set, err := h.svc.Metadata.PatchExamSet(c.Request.Context(), viewer(c), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *handlers) deleteExamSet(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Metadata.DeleteExamSet(c.Request.Context(), viewer(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":    "deleteExamSet",
		"message": fmt.Sprintf("Succesfully deleted exam set %d", id),
	})
}
