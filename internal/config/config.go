// Package config loads the fpsview configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leterax/go-fpsview/internal/logger"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Environment overrides applied by Load
const (
	EnvPoseAddr  = "FPSVIEW_POSE_ADDR"
	EnvAPIListen = "FPSVIEW_API_LISTEN"
)

// Pose stream transports
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Controller types
const (
	ControllerFPS   = "fps"
	ControllerOrbit = "orbit"
)

type Window struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Title  string  `yaml:"title"`
	FOV    float64 `yaml:"fov"` // degrees
}

type Tracking struct {
	// PoseAddr is host:port for tcp or a ws:// URL for websocket
	PoseAddr      string        `yaml:"pose_addr"`
	Transport     string        `yaml:"transport"`
	ClientName    string        `yaml:"client_name"`
	FixedFrame    string        `yaml:"fixed_frame"`
	TargetFrame   string        `yaml:"target_frame"`
	CacheDuration time.Duration `yaml:"cache_duration"`
	QueueSize     int           `yaml:"queue_size"`
}

type Controller struct {
	Type              string  `yaml:"type"`
	OrientationPolicy string  `yaml:"orientation_policy"`
	NearClip          float64 `yaml:"near_clip"`
}

type API struct {
	Enabled      bool   `yaml:"enabled"`
	Listen       string `yaml:"listen"`
	CommandQueue int    `yaml:"command_queue"`
}

// Config is the full viewer configuration
type Config struct {
	Window     Window        `yaml:"window"`
	Tracking   Tracking      `yaml:"tracking"`
	Controller Controller    `yaml:"controller"`
	API        API           `yaml:"api"`
	Log        logger.Config `yaml:"log"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "fpsview",
			FOV:    45,
		},
		Tracking: Tracking{
			PoseAddr:      "localhost:20100",
			Transport:     TransportTCP,
			ClientName:    "fpsview",
			FixedFrame:    "map",
			CacheDuration: 10 * time.Second,
			QueueSize:     256,
		},
		Controller: Controller{
			Type:              ControllerFPS,
			OrientationPolicy: "yaw-pitch",
			NearClip:          0.01,
		},
		API: API{
			Enabled:      true,
			Listen:       "127.0.0.1:8090",
			CommandQueue: 64,
		},
		Log: logger.DefaultConfig(),
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays the environment overrides
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvPoseAddr); addr != "" {
		c.Tracking.PoseAddr = addr
	}
	if listen := os.Getenv(EnvAPIListen); listen != "" {
		c.API.Listen = listen
	}
	c.Log = logger.ConfigFromEnv(c.Log)
}

// Validate checks the configuration for values the viewer cannot use
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Window.FOV <= 0 || c.Window.FOV >= 180 {
		return fmt.Errorf("%w: fov %v out of range", ErrInvalid, c.Window.FOV)
	}

	switch c.Tracking.Transport {
	case TransportTCP, TransportWebSocket:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Tracking.Transport)
	}
	if c.Tracking.FixedFrame == "" {
		return fmt.Errorf("%w: fixed_frame is required", ErrInvalid)
	}
	if c.Tracking.QueueSize < 0 {
		return fmt.Errorf("%w: negative queue_size", ErrInvalid)
	}

	switch c.Controller.Type {
	case ControllerFPS, ControllerOrbit:
	default:
		return fmt.Errorf("%w: unknown controller %q", ErrInvalid, c.Controller.Type)
	}
	switch c.Controller.OrientationPolicy {
	case "", "yaw-pitch", "legacy":
	default:
		return fmt.Errorf("%w: unknown orientation_policy %q", ErrInvalid, c.Controller.OrientationPolicy)
	}
	if c.Controller.NearClip < 0.001 {
		return fmt.Errorf("%w: near_clip %v below 0.001", ErrInvalid, c.Controller.NearClip)
	}

	if c.API.Enabled && c.API.Listen == "" {
		return fmt.Errorf("%w: api.listen is required when the api is enabled", ErrInvalid)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
