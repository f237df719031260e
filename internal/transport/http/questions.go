package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"medmcq/internal/domain"
)

func (h *handlers) listQuestions(c *gin.Context) {
	params, ok := h.selectionParams(c)
	if !ok {
		return
	}
	h.selectAndRespond(c, params)
}

type searchRequest struct {
	Semester int64  `json:"semester"`
	Search   string `json:"search"`
}

func (h *handlers) searchQuestions(c *gin.Context) {
	var req searchRequest
	if !h.bind(c, &req) {
		return
	}
	if len(domain.SearchTokens(req.Search)) == 0 {
		h.fail(c, domain.ErrNoQuestions)
		return
	}
	h.selectAndRespond(c, domain.SelectionParams{Semester: req.Semester, Search: req.Search})
}

func (h *handlers) selectAndRespond(c *gin.Context, params domain.SelectionParams) {
	sel, err := domain.ResolveSelection(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.svc.Questions.SelectQuestions(c.Request.Context(), viewer(c), sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *handlers) getQuestion(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Questions.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) createQuestion(c *gin.Context) {
	var in domain.QuestionInput
	if !h.bind(c, &in) {
		return
	}
	view, err := h.svc.Questions.Create(c.Request.Context(), viewer(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) patchQuestion(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var patch domain.QuestionPatch
	if !h.bind(c, &patch) {
		return
	}
	view, err := h.svc.Questions.Patch(c.Request.Context(), viewer(c), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) deleteQuestion(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.Questions.Delete(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":    "deleteQuestion",
		"message": fmt.Sprintf("Succesfully deleted %d question", n),
	})
}

// voteRequest carries value as a number, null or the string "delete".
type voteRequest struct {
	Type  string          `json:"type"`
	ID    int64           `json:"id"`
	Value json.RawMessage `json:"value"`
}

func (r voteRequest) op() (domain.VoteOp, error) {
	raw := bytes.TrimSpace(r.Value)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: value is required", domain.ErrModelValidation)
	}
	if bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`"delete"`)) {
		return domain.ClearVote{}, nil
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: vote must be a number or \"delete\"", domain.ErrModelValidation)
	}
	return domain.SetVote{Value: value}, nil
}

func (h *handlers) vote(c *gin.Context) {
	questionID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req voteRequest
	if !h.bind(c, &req) {
		return
	}
	kind, err := domain.ParseMetadataKind(req.Type)
	if err != nil {
		h.fail(c, err)
		return
	}
	op, err := req.op()
	if err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.svc.Votes.Vote(c.Request.Context(), viewer(c), kind, questionID, req.ID, op)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) getVote(c *gin.Context) {
	kind, err := domain.ParseMetadataKind(c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Votes.GetVote(c.Request.Context(), kind, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type answerRequest struct {
	Answer int `json:"answer"`
}

func (h *handlers) answer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req answerRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.Questions.Answer(c.Request.Context(), viewer(c), id, req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": "QuestionAnswerSuccess", "data": out})
}

func (h *handlers) createBookmark(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Bookmarks.Create(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": "QuestionBookmarkSuccess", "data": b})
}

func (h *handlers) deleteBookmark(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Bookmarks.Delete(c.Request.Context(), viewer(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": "QuestionBookmarkDeleteSuccess", "data": gin.H{"questionId": id}})
}

func (h *handlers) listBookmarks(c *gin.Context) {
	bookmarks, err := h.svc.Bookmarks.List(c.Request.Context(), viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

type suggestTagRequest struct {
	TagName string `json:"tagName"`
}

func (h *handlers) suggestTag(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req suggestTagRequest
	if !h.bind(c, &req) {
		return
	}
	msg, err := h.svc.Votes.SuggestTag(c.Request.Context(), req.TagName, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
