package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

const (
	resultCodeHeader = "api-result-code"

	// resultNotFound covers a missing board or comment, including the board
	// named by a new comment.
	resultNotFound = "1"
	// resultParentNotFound is a new comment's missing parent.
	resultParentNotFound = "2"
)

func (h *handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrParentCommentNotFound):
		noContent(c, resultParentNotFound)
	case errors.Is(err, model.ErrBoardNotFound), errors.Is(err, model.ErrNotFound):
		noContent(c, resultNotFound)
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidPage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrUnknownMember):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown member"})
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func noContent(c *gin.Context, code string) {
	c.Header(resultCodeHeader, code)
	c.Status(http.StatusNoContent)
}
