package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/sync"
)

// ProfileHandler exposes the profile mutation operations.
type ProfileHandler struct {
	engine *sync.Engine
	logger *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(engine *sync.Engine, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{engine: engine, logger: logger.Named("api.profile")}
}

// PatchProfile handles PATCH /api/v1/profile. The body is a partial field
// set; unrecognized keys are rejected so exactly the validated fields reach
// the merge-write.
func (h *ProfileHandler) PatchProfile(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No fields to update"})
		return
	}
	for k := range fields {
		if _, ok := profileFields[k]; !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unrecognized profile field: " + k})
			return
		}
	}

	if err := h.engine.UpdateProfile(c.Request.Context(), fields); err != nil {
		h.respondMutationError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "profile updated"})
}

// PostAvatar handles POST /api/v1/profile/avatar (multipart form, field
// "file").
func (h *ProfileHandler) PostAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Form file 'file' is required", Details: err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read uploaded file"})
		return
	}
	defer f.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.engine.UploadAvatar(c.Request.Context(), fileHeader.Filename, f, contentType); err != nil {
		h.respondMutationError(c, err, "Failed to upload profile picture")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "profile picture updated"})
}

// PostTutorialFinish handles POST /api/v1/tutorial/finish.
func (h *ProfileHandler) PostTutorialFinish(c *gin.Context) {
	if err := h.engine.FinishTutorial(c.Request.Context()); err != nil {
		h.respondMutationError(c, err, "Failed to complete tutorial")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "tutorial completed"})
}

func (h *ProfileHandler) respondMutationError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, sync.ErrNoSession):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "No authenticated session"})
	case errors.Is(err, sync.ErrGuestSession):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "This action is not available in the demo session"})
	default:
		// The engine has already surfaced a user-visible notice and, for
		// profile writes, re-subscribed to the canonical document.
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: msg, Details: err.Error()})
	}
}
