package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"storyreel/elevenlabs"
	"storyreel/video-editor/engine"
	"storyreel/video-editor/models"
	"storyreel/video-editor/store"
	"storyreel/video-editor/utils"
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
	config.Settings.MaxConcurrentJobs = env.MaxConcurrentJobs

	// Create directories
	tempDir := "./temp"
	for _, dir := range []string{env.OutputDir, tempDir} {
		if err := utils.EnsureDirectoryExists(dir); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}
	if err := utils.ValidateFFmpegInstalled(); err != nil {
		log.Warn().Err(err).Msg("ffmpeg not found; renders will fail")
	}

	jobs, closeStore := openStore(env)
	defer closeStore()

	var narrator Narrator
	if el := elevenlabs.ConfigFromEnv(); el.Enabled() {
		narrator = el.NewNarrator(env.MaxConcurrentJobs)
		log.Info().Str("voice", el.VoiceID).Msg("ElevenLabs narration enabled")
	}

	server := NewJobServer(jobs, engine.NewVideoEditor(env.OutputDir, config), narrator, config, env.OutputDir, tempDir)

	port := env.Port
	log.Info().Str("port", port).Msg("render API server starting")
	if err := http.ListenAndServe(":"+port, server.routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// openStore connects to MongoDB when MONGO_URI is set and falls back to
// process memory otherwise.
func openStore(env models.ServiceEnv) (store.JobStore, func()) {
	if env.MongoURI == "" {
		log.Info().Msg("MONGO_URI not set, keeping jobs in memory")
		return store.NewMemoryStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoStore, err := store.ConnectMongo(ctx, env.MongoURI, env.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("db", env.MongoDB).Msg("connected to MongoDB")
	return mongoStore, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoStore.Close(ctx)
	}
}
