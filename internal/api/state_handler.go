package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolmaps-sync-go/internal/sync"
)

// StateHandler exposes the engine's read-only projections. The engine is the
// single writer; everything served here is a copy.
type StateHandler struct {
	engine *sync.Engine
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(engine *sync.Engine) *StateHandler {
	return &StateHandler{engine: engine}
}

// GetState handles GET /api/v1/state.
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.State())
}

// GetEvents handles GET /api/v1/events.
func (h *StateHandler) GetEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Events())
}

// GetRecentFiles handles GET /api/v1/files/recent.
func (h *StateHandler) GetRecentFiles(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.RecentFiles())
}

// GetSubjectFiles handles GET /api/v1/files/subject. The result is already
// narrowed by the current search query.
func (h *StateHandler) GetSubjectFiles(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.SubjectFiles())
}

// PutSubject handles PUT /api/v1/subject.
func (h *StateHandler) PutSubject(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	h.engine.SelectSubject(req.Subject)
	c.JSON(http.StatusOK, MessageResponse{Message: "subject updated"})
}

// PutSearch handles PUT /api/v1/search.
func (h *StateHandler) PutSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	h.engine.SetSearchQuery(req.Query)
	c.JSON(http.StatusOK, MessageResponse{Message: "search updated"})
}
