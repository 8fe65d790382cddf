package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hls-converter/internal/converter"
	"hls-converter/internal/encoder"
	"hls-converter/internal/platform/config"
	"hls-converter/internal/platform/logger"
	"hls-converter/internal/platform/metrics"
	"hls-converter/internal/task"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	mediaRoot := config.GetEnv("MEDIA_ROOT", "media")
	tasksFile := config.GetEnv("TASKS_FILE", "tasks.json")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	logSource := config.GetEnvBool("LOG_SOURCE", false)
	ffmpegBin := config.GetEnv("FFMPEG_PATH", "ffmpeg")
	ffprobeBin := config.GetEnv("FFPROBE_PATH", "ffprobe")

	opts := converter.Options{
		HLSTime:                config.GetEnvInt("HLS_TIME", converter.DefaultHLSTime),
		CopyCodecsThresholdPix: config.GetEnvInt("COPY_THRESHOLD", converter.DefaultCopyThreshold),
		MaxConcurrentEncodes:   config.GetEnvInt("MAX_CONCURRENT_ENCODES", 0),
		ProxyBaseURLTemplate:   config.GetEnv("PROXY_BASE_URL_TEMPLATE", converter.DefaultProxyTemplate),
	}

	log := logger.New(logLevel, logFormat, logSource)

	store, err := task.NewFileStore(tasksFile, log)
	if err != nil {
		log.Error("task store init failed", "path", tasksFile, "error", err)
		os.Exit(1)
	}

	engine := encoder.NewFFmpeg(ffmpegBin, ffprobeBin, log)
	met := metrics.New()
	svc := converter.NewService(engine, store, opts, mediaRoot, log, met)
	h := converter.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", met.Handler().ServeHTTP)
	r.Route("/api", h.Routes)
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaRoot))))

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"media_root", mediaRoot,
		"tasks_file", tasksFile,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
