package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/sync"
)

// SetupRoutes configures the local API through which view collaborators read
// the synchronized state and issue mutation requests. Global middleware
// (Logging, Recovery, CORS) is expected to be applied to the router before
// this is called, typically in main.go.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, engine *sync.Engine) {
	stateHandler := NewStateHandler(engine)
	profileHandler := NewProfileHandler(engine, logger)
	sessionHandler := NewSessionHandler(engine)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/state", stateHandler.GetState)
		apiV1.GET("/events", stateHandler.GetEvents)
		apiV1.GET("/files/recent", stateHandler.GetRecentFiles)
		apiV1.GET("/files/subject", stateHandler.GetSubjectFiles)
		apiV1.PUT("/subject", stateHandler.PutSubject)
		apiV1.PUT("/search", stateHandler.PutSearch)

		apiV1.PATCH("/profile", profileHandler.PatchProfile)
		apiV1.POST("/profile/avatar", profileHandler.PostAvatar)
		apiV1.POST("/tutorial/finish", profileHandler.PostTutorialFinish)

		apiV1.POST("/logout", sessionHandler.PostLogout)
		apiV1.POST("/notices/:noticeId/confirm", sessionHandler.PostNoticeConfirm)
		apiV1.POST("/notices/:noticeId/cancel", sessionHandler.PostNoticeCancel)
		apiV1.PUT("/connectivity", sessionHandler.PutConnectivity)
		apiV1.POST("/share/result", sessionHandler.PostShareResult)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "appStatus": string(engine.Status())})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
