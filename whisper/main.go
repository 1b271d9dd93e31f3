package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"storyreel/video-editor/models"
	"storyreel/video-editor/utils"
)

const (
	UPLOAD_DIR        = "/tmp/uploads"
	MAX_FILE_SIZE     = 100 << 20 // 100MB
	MAX_BATCH_SIZE    = 50
	BATCH_CONCURRENCY = 4

	DEFAULT_GAP_TOLERANCE = 0.05 // seconds
)

func main() {
	env, err := models.LoadServiceEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment")
	}
	utils.SetupLogger(env.LogLevel)

	config, err := env.ProjectConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load project config")
	}

	if err := os.MkdirAll(UPLOAD_DIR, 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create upload directory")
	}

	if env.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(NewCaptionServer(config, UPLOAD_DIR))

	port := env.Port
	log.Info().Str("port", port).Msg("caption API server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newRouter(s *CaptionServer) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// Routes
	r.GET("/health", healthCheck)
	r.GET("/presets", s.listPresets)
	r.POST("/captions", s.createCaptions)
	r.POST("/captions/batch", s.createCaptionsBatch)
	r.POST("/captions/upload", s.captionsForUpload)
	r.POST("/captions/validate", s.validateSRT)
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
