package main

import (
	"context"
	"time"

	"github.com/leterax/go-fpsview/internal/config"
	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/network"
	"github.com/leterax/go-fpsview/pkg/tf"
)

// reconnectDelay is the pause between attempts to reach the publisher
const reconnectDelay = 2 * time.Second

func dial(cfg config.Tracking) (*network.Client, error) {
	if cfg.Transport == config.TransportWebSocket {
		return network.DialWebSocket(cfg.PoseAddr)
	}
	return network.NewClient(cfg.PoseAddr)
}

// runPoseLink keeps a connection to the pose publisher open and feeds every
// received pose into feed until ctx is done
func runPoseLink(ctx context.Context, cfg config.Tracking, feed *tf.Feed, lg logger.Logger) {
	lg = logger.Component(lg, "pose-link").With(
		logger.F("addr", cfg.PoseAddr),
		logger.F("transport", cfg.Transport))

	for {
		client, err := dial(cfg)
		if err != nil {
			lg.Warn("pose publisher unreachable", logger.F("error", err))
		} else {
			client.SetName(cfg.ClientName)
			client.OnIdentification = func(sessionID uint32) {
				lg.Info("connected to pose publisher", logger.F("session", sessionID))
				if err := client.SendClientMetadata(); err != nil {
					lg.Warn("failed to send client metadata", logger.F("error", err))
				}
			}
			client.OnFramePose = feed.HandlePose
			client.OnFrameRemove = feed.HandleRemove
			client.OnStatus = func(message string) {
				lg.Info("publisher status", logger.F("message", message))
			}

			done := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					client.Close()
				case <-done:
				}
			}()

			err = client.ProcessPackets()
			close(done)
			client.Close()
			if ctx.Err() != nil {
				return
			}
			lg.Warn("pose link lost", logger.F("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}
