package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// memberDeleted replays a member deletion notice delivered over HTTP.
func (h *handler) memberDeleted(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := h.events.Handle(c.Request.Context(), payload); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
