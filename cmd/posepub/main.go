// Command posepub publishes a robot driving in a circle on the pose stream.
// It is the counterpart fpsview connects to when no real publisher runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/network"
)

func main() {
	listen := flag.String("listen", fmt.Sprintf(":%d", network.ServerPort), "TCP listen address")
	wsListen := flag.String("ws", fmt.Sprintf(":%d", network.ServerPort+1), "Websocket listen address (empty disables)")
	frame := flag.String("frame", "base_link", "Name of the moving frame")
	rate := flag.Float64("rate", 30, "Publish rate in Hz")
	radius := flag.Float64("radius", 3, "Circle radius in meters")
	period := flag.Duration("period", 20*time.Second, "Time for one lap")
	flag.Parse()

	if *rate <= 0 || *period <= 0 {
		log.Fatalf("rate and period must be positive")
	}

	lg, err := logger.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := network.NewServer(lg)

	l, err := net.Listen("tcp", *listen)
	if err != nil {
		lg.Fatal("failed to listen", logger.F("addr", *listen), logger.F("error", err))
	}
	go func() {
		if err := srv.Serve(l); err != nil {
			lg.Error("tcp server stopped", logger.F("error", err))
		}
	}()
	lg.Info("publishing poses", logger.F("tcp", *listen), logger.F("frame", *frame), logger.F("rate", *rate))

	var httpSrv *http.Server
	if *wsListen != "" {
		mux := http.NewServeMux()
		mux.Handle(network.WebSocketPath, srv)
		httpSrv = &http.Server{Addr: *wsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.Error("websocket server stopped", logger.F("error", err))
			}
		}()
		lg.Info("websocket endpoint ready", logger.F("addr", *wsListen), logger.F("path", network.WebSocketPath))
	}

	publish(ctx, srv, *frame, *radius, *period, time.Duration(float64(time.Second) / *rate))

	srv.BroadcastRemove(*frame)
	srv.BroadcastStatus("publisher shutting down")
	l.Close()
	srv.Close()
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("websocket shutdown failed", logger.F("error", err))
		}
	}
	lg.Info("publisher stopped")
}

func publish(ctx context.Context, srv *network.Server, frame string, radius float64, period, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			position, orientation := circlePose(now.Sub(start), radius, period)
			srv.BroadcastPose(network.FramePose{
				Frame:       frame,
				Stamp:       now,
				Position:    position,
				Orientation: orientation,
			})
		}
	}
}

// circlePose places the robot on a circle around the origin at elapsed,
// heading along the direction of travel
func circlePose(elapsed time.Duration, radius float64, period time.Duration) (mgl64.Vec3, mgl64.Quat) {
	angle := 2 * math.Pi * float64(elapsed%period) / float64(period)
	position := mgl64.Vec3{radius * math.Cos(angle), radius * math.Sin(angle), 0}
	heading := mgl64.QuatRotate(angle+math.Pi/2, mgl64.Vec3{0, 0, 1})
	return position, heading
}
