package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolmaps-sync-go/internal/sync"
)

// SessionHandler exposes logout, notice resolution and the connectivity
// feed.
type SessionHandler struct {
	engine *sync.Engine
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(engine *sync.Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

// PostLogout handles POST /api/v1/logout. It shows the logout confirmation
// notice; sign-out happens when the notice is confirmed.
func (h *SessionHandler) PostLogout(c *gin.Context) {
	notice := h.engine.BeginLogout()
	c.JSON(http.StatusOK, notice)
}

// PostNoticeConfirm handles POST /api/v1/notices/:noticeId/confirm.
func (h *SessionHandler) PostNoticeConfirm(c *gin.Context) {
	h.resolveNotice(c, true)
}

// PostNoticeCancel handles POST /api/v1/notices/:noticeId/cancel.
func (h *SessionHandler) PostNoticeCancel(c *gin.Context) {
	h.resolveNotice(c, false)
}

func (h *SessionHandler) resolveNotice(c *gin.Context, confirmed bool) {
	id := c.Param("noticeId")
	if err := h.engine.Notifier().Resolve(id, confirmed); err != nil {
		if errors.Is(err, sync.ErrNoticeNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Notice not found or already superseded"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve notice", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "notice resolved"})
}

// PutConnectivity handles PUT /api/v1/connectivity.
func (h *SessionHandler) PutConnectivity(c *gin.Context) {
	var req ConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	h.engine.SetOnline(*req.Online)
	c.JSON(http.StatusOK, MessageResponse{Message: "connectivity updated"})
}

// PostShareResult handles POST /api/v1/share/result.
func (h *SessionHandler) PostShareResult(c *gin.Context) {
	var req ShareResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	h.engine.ShareResult(*req.OK, req.Title)
	c.JSON(http.StatusOK, MessageResponse{Message: "share result recorded"})
}
