package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/leterax/go-fpsview/internal/config"
	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/api"
	"github.com/leterax/go-fpsview/pkg/tf"
	"github.com/leterax/go-fpsview/pkg/view"
	"github.com/leterax/go-fpsview/pkg/viewer"
)

func init() {
	// This is needed to ensure that OpenGL functions are called from the same thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	poseAddr := flag.String("poses", "", "Pose publisher address (overrides config)")
	transport := flag.String("transport", "", "Pose transport: tcp or websocket (overrides config)")
	target := flag.String("target", "", "Target frame (overrides config)")
	controller := flag.String("controller", "", "Initial controller: fps or orbit (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *poseAddr != "" {
		cfg.Tracking.PoseAddr = *poseAddr
	}
	if *transport != "" {
		cfg.Tracking.Transport = *transport
	}
	if *target != "" {
		cfg.Tracking.TargetFrame = *target
	}
	if *controller != "" {
		cfg.Controller.Type = *controller
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	zl, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()
	var lg logger.Logger = zl

	policy, err := view.ParseOrientationPolicy(cfg.Controller.OrientationPolicy)
	if err != nil {
		lg.Fatal("bad orientation policy", logger.F("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames := tf.NewFrameManager(cfg.Tracking.FixedFrame, cfg.Tracking.CacheDuration, lg)
	feed := tf.NewFeed(frames, cfg.Tracking.QueueSize, lg)
	defer feed.Cleanup()

	go runPoseLink(ctx, cfg.Tracking, feed, lg)

	v := viewer.New(frames, feed, viewer.Options{
		Width:        cfg.Window.Width,
		Height:       cfg.Window.Height,
		Title:        cfg.Window.Title,
		FOV:          cfg.Window.FOV,
		VSync:        true,
		Controller:   cfg.Controller.Type,
		Policy:       policy,
		NearClip:     cfg.Controller.NearClip,
		TargetFrame:  cfg.Tracking.TargetFrame,
		CommandQueue: cfg.API.CommandQueue,
	}, lg)

	if cfg.API.Enabled {
		srv := api.NewServer(cfg.API.Listen, v.Manager(), frames, lg)
		srv.StartAsync()
		defer func() {
			if err := srv.Shutdown(); err != nil {
				lg.Warn("api shutdown failed", logger.F("error", err))
			}
		}()
	}

	if err := v.Run(ctx); err != nil {
		lg.Error("viewer failed", logger.F("error", err))
		os.Exit(1)
	}
}
