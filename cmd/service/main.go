package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"watchroom/internal/catalog"
	"watchroom/internal/library"
	"watchroom/internal/logger"
	"watchroom/internal/state"
	"watchroom/internal/videos"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		_ = godotenv.Load()
	}
	logger.Init(os.Getenv("LOG_LEVEL"))
	log := logger.Get()

	port := getenv("PORT", "3001")
	stateFile := os.Getenv("STATE_FILE")
	redisURL := getenv("REDIS_URL", "redis://localhost:6379")

	ctx := context.Background()

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		if stateFile == "" {
			log.Fatalf("redis unavailable and no STATE_FILE fallback configured: %v", err)
		}
		log.WithError(err).Warn("redis unavailable, running without cache and events")
		rdb.Close()
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var snaps library.Snapshots
	if stateFile != "" {
		snaps = state.NewFileStore(stateFile)
	} else {
		snaps = state.NewRedisStore(rdb, "")
	}

	store, err := library.NewStore(ctx, snaps, rdb, log)
	if err != nil {
		log.Fatalf("restore library state: %v", err)
	}

	tmdbKey := getenv("TMDB_API_KEY", "")
	if tmdbKey == "" {
		log.Warn("TMDB_API_KEY not set, catalog search will fail upstream")
	}
	tmdb := catalog.NewClient(catalog.ClientConfig{
		APIKey:  tmdbKey,
		BaseURL: getenv("TMDB_BASE_URL", ""),
		Redis:   rdb,
		Logger:  log,
	})

	ytKey := getenv("YOUTUBE_API_KEY", "")
	if ytKey == "" {
		log.Warn("YOUTUBE_API_KEY not set, video search will fail upstream")
	}
	yt := videos.NewClient(ytKey, getenv("YOUTUBE_SEARCH_URL", ""), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(corsMiddleware)
	r.Use(loggingMiddleware(log))

	r.Mount("/", library.NewServer(store, log).Router())
	r.Mount("/catalog", catalog.NewServer(tmdb, log).Router())
	r.Mount("/videos", videos.NewServer(yt, log).Router())

	log.Infof("watchroom listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("watchroom: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
