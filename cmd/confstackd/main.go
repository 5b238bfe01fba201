// cmd/confstackd is a demo service exercising the composer end to end:
// it loads a JSON base file, an optional profile-specific overlay, and an
// environment overlay, then serves /healthz, /stats, and /metrics while
// watching its sources for changes. Grounded on the teacher's
// cmd/web/main.go bootstrap sequence (env load, logger, metrics, HTTP
// server), re-pointed at a config-stats surface instead of tenant routing.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/confstack/internal/cache"
	"github.com/yanizio/confstack/internal/config"
	"github.com/yanizio/confstack/internal/logger"
	"github.com/yanizio/confstack/internal/profile"
	"github.com/yanizio/confstack/internal/source"
)

func loadEnv() {
	_ = godotenv.Load()
}

func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	log, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		panic(err)
	}

	profiles := profile.NewManager()
	active := profiles.Active()
	log.Infow("active profile detected", "profile", active.Name)

	basePath := envOr("CONFSTACK_CONFIG", "config/base.json")

	mgr := config.New(
		config.WithLogger(log),
		config.WithCache(cache.NewManager(cache.NewMemoryBackend(256), "memory", true)),
		config.WithProfileManager(profiles),
	)

	mgr.AddSource(source.NewJSONSource(basePath))
	mgr.AddProfiledSource("config", "json", source.NewJSONSource)
	mgr.AddSource(source.NewEnvironmentSource(source.EnvironmentOptions{
		Prefixes:    []string{"CONFSTACK_"},
		Separator:   "__",
		FoldCase:    true,
		ParseValues: true,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.StartAutoReload(ctx, time.Second); err != nil {
		log.Warnw("auto reload not started", "err", err)
	}
	defer mgr.Dispose()

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mgr.Stats())
	})
	r.Handle("/metrics", promhttp.Handler())

	listenAddr := envOr("CONFSTACK_LISTEN_ADDR", ":8080")
	log.Infow("confstackd listening", "addr", listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		log.Fatalw("http server", "err", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
