package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/api"
	"schoolmaps-sync-go/internal/config"
	"schoolmaps-sync-go/internal/localstate"
	"schoolmaps-sync-go/internal/middleware"
	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
	"schoolmaps-sync-go/internal/sync"
)

func main() {
	// Best-effort .env load for local development; real deployments rely on
	// the environment.
	_ = godotenv.Load()

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := remote.InitFirebase(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}

	firestoreClient := remote.GetFirestoreClient()
	firebaseAuthClient := remote.GetFirebaseAuthClient()
	storageBucket := remote.GetStorageBucket()
	if firestoreClient == nil || firebaseAuthClient == nil || storageBucket == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase clients are nil after initialization. Application cannot start.")
	}

	localStore, err := localstate.Open(appConfig.StateDir)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to open local state store",
			zap.String("dir", appConfig.StateDir), zap.Error(err))
	}

	sessionSource, err := remote.NewTokenSessionSource(initCtx, firebaseAuthClient,
		appConfig.FirebaseIDToken, models.GuestUID, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to resolve session", zap.Error(err))
	}

	engine, err := sync.New(sync.Options{
		AppID:     appConfig.AppID,
		Logger:    zapLogger,
		Documents: remote.NewFirestoreStore(firestoreClient, zapLogger),
		Objects:   remote.NewGCSObjectStore(storageBucket, zapLogger),
		Sessions:  sessionSource,
		Local:     localStore,
	})
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize sync engine", zap.Error(err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	engine.Start(rootCtx)
	zapLogger.Info("Sync engine started.")

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// Order matters: log every request, then recover from panics.
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	api.SetupRoutes(router, zapLogger, engine)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	engine.Close()
	if err := firestoreClient.Close(); err != nil {
		zapLogger.Warn("Error closing Firestore client", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
