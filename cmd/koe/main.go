// Koe is a Japanese text-to-speech daemon. It turns text into accent
// phrases through an external phonetic analyzer, predicts durations and
// pitch with ONNX acoustic models, and renders WAV audio over HTTP, gRPC and
// the Wyoming protocol.
//
// Usage:
//
//	koe [flags]
//	koe --config /path/to/koe.yaml
//
// @title       koe API
// @version     1.0
// @description Japanese text to speech: accent phrase analysis, prosody prediction and WAV synthesis.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	_ "github.com/nadzzz/koe/docs"
	"github.com/nadzzz/koe/internal/analyzer"
	"github.com/nadzzz/koe/internal/config"
	"github.com/nadzzz/koe/internal/dispatch"
	"github.com/nadzzz/koe/internal/engine"
	"github.com/nadzzz/koe/internal/health"
	"github.com/nadzzz/koe/internal/metrics"
	"github.com/nadzzz/koe/internal/model/onnx"
	"github.com/nadzzz/koe/internal/query"
	"github.com/nadzzz/koe/internal/transport"
	grpctransport "github.com/nadzzz/koe/internal/transport/grpc"
	httptransport "github.com/nadzzz/koe/internal/transport/http"
	wyomingtransport "github.com/nadzzz/koe/internal/transport/wyoming"
	"github.com/nadzzz/koe/internal/tts/voicevox"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/koe.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("koe %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("koe starting", "version", version)

	if err := run(cfg); err != nil {
		slog.Error("koe failed", "error", err)
		os.Exit(1)
	}
	slog.Info("koe stopped")
}

func run(cfg *config.Config) error {
	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// Load the acoustic models.
	core, err := onnx.Open(cfg.Model.ONNX)
	if err != nil {
		return fmt.Errorf("loading models: %w", err)
	}

	labels := analyzer.New(cfg.Analyzer)
	slog.Info("using remote analyzer", "endpoint", cfg.Analyzer.Endpoint)

	eng := engine.New(labels, collector.InstrumentCore(core),
		engine.WithQueryDefaults(queryDefaults(cfg.Engine)),
		engine.WithMaxDuration(cfg.Engine.MaxDuration.Seconds()),
	)
	synthesizer := voicevox.New(eng, core.Close)
	defer synthesizer.Close()

	// Initialize enabled transports.
	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, version))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	if cfg.Transports.Wyoming.Enabled {
		transports = append(transports, wyomingtransport.New(cfg.Transports.Wyoming, version))
	}
	if len(transports) == 0 {
		return fmt.Errorf("no transports enabled, enable at least one in config")
	}

	dispatcher := dispatch.New(eng, synthesizer, cfg.Engine, collector)

	healthServer := health.New(cfg.Server.HealthPort, prometheus.DefaultGatherer)
	healthServer.AddCheck("analyzer", labels.Ping)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx, dispatcher.Handle); err != nil {
				return fmt.Errorf("transport %s: %w", t.Name(), err)
			}
			return nil
		})
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("koe ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort,
		"default_speaker", cfg.Engine.DefaultSpeaker)

	<-gctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}
	return g.Wait()
}

// queryDefaults builds the scalar controls of new queries from config.
func queryDefaults(e config.EngineConfig) query.AudioQuery {
	return query.AudioQuery{
		SpeedScale:         e.SpeedScale,
		PitchScale:         e.PitchScale,
		IntonationScale:    e.IntonationScale,
		VolumeScale:        e.VolumeScale,
		PrePhonemeLength:   e.PrePhonemeLength,
		PostPhonemeLength:  e.PostPhonemeLength,
		OutputSamplingRate: e.OutputSamplingRate,
		OutputStereo:       e.OutputStereo,
	}
}
