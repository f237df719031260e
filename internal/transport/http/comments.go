package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

func (h *handlers) createComment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in app.CommentInput
	if !h.bind(c, &in) {
		return
	}
	h.respondQuestion(c)(h.svc.Comments.Create(c.Request.Context(), viewer(c), id, in))
}

func (h *handlers) editComment(c *gin.Context) {
	id, commentID, ok := h.commentPath(c)
	if !ok {
		return
	}
	var in app.CommentInput
	if !h.bind(c, &in) {
		return
	}
	h.respondQuestion(c)(h.svc.Comments.Edit(c.Request.Context(), viewer(c), id, commentID, in))
}

func (h *handlers) deleteComment(c *gin.Context) {
	id, commentID, ok := h.commentPath(c)
	if !ok {
		return
	}
	h.respondQuestion(c)(h.svc.Comments.Delete(c.Request.Context(), viewer(c), id, commentID))
}

func (h *handlers) likeComment(c *gin.Context) {
	id, commentID, ok := h.commentPath(c)
	if !ok {
		return
	}
	h.respondQuestion(c)(h.svc.Comments.Like(c.Request.Context(), viewer(c), id, commentID))
}

func (h *handlers) commentPath(c *gin.Context) (int64, int64, bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return 0, 0, false
	}
	commentID, ok := h.pathID(c, "commentId")
	return id, commentID, ok
}

func (h *handlers) respondQuestion(c *gin.Context) func(domain.QuestionView, error) {
	return func(view domain.QuestionView, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
