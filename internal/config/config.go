// Package config holds the program settings. Values come from Default and
// may be overridden by a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a string ("250ms") in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Window settings.
type Window struct {
	Width        int      `toml:"width"`
	Height       int      `toml:"height"`
	Title        string   `toml:"title"`
	VSync        bool     `toml:"vsync"`
	PollInterval Duration `toml:"poll_interval"` // how often the event thread re-checks health while idle
}

// Camera settings. The camera only translates; it always looks down -Z.
type Camera struct {
	FOV       float32    `toml:"fov"` // vertical, degrees
	Near      float32    `toml:"near"`
	Far       float32    `toml:"far"`
	Position  [3]float32 `toml:"position"`
	MoveSpeed float32    `toml:"move_speed"` // units per second per held key
}

// Render loop settings.
type Render struct {
	Background      [4]float32 `toml:"background"`
	FPSLimit        int        `toml:"fps_limit"` // only used when vsync is off; 0 = unlimited
	SlowFrame       Duration   `toml:"slow_frame"`
	ShutdownTimeout Duration   `toml:"shutdown_timeout"`
}

// Scene settings for the helicopter rig.
type Scene struct {
	RotorSpeed     float32    `toml:"rotor_speed"` // radians per second
	Altitude       float32    `toml:"altitude"`
	TailRotorPivot [3]float32 `toml:"tail_rotor_pivot"`
	TerrainColor   [4]float32 `toml:"terrain_color"`
	BodyColor      [4]float32 `toml:"body_color"`
	DoorColor      [4]float32 `toml:"door_color"`
	MainRotorColor [4]float32 `toml:"main_rotor_color"`
	TailRotorColor [4]float32 `toml:"tail_rotor_color"`
}

// Assets are file paths resolved relative to the working directory.
type Assets struct {
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	Terrain        string `toml:"terrain"`
	Helicopter     string `toml:"helicopter"`
}

// Log settings.
type Log struct {
	Level string `toml:"level"`
}

// Config is the full program configuration.
type Config struct {
	Window Window `toml:"window"`
	Camera Camera `toml:"camera"`
	Render Render `toml:"render"`
	Scene  Scene  `toml:"scene"`
	Assets Assets `toml:"assets"`
	Log    Log    `toml:"log"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Window: Window{
			Width:        800,
			Height:       600,
			Title:        "heliscene",
			VSync:        true,
			PollInterval: Duration(100 * time.Millisecond),
		},
		Camera: Camera{
			FOV:       45,
			Near:      0.1,
			Far:       1000,
			Position:  [3]float32{0, 50, 200},
			MoveSpeed: 10,
		},
		Render: Render{
			Background:      [4]float32{0.1, 0.1, 0.1, 1},
			SlowFrame:       Duration(50 * time.Millisecond),
			ShutdownTimeout: Duration(2 * time.Second),
		},
		Scene: Scene{
			RotorSpeed:     10,
			Altitude:       50,
			TailRotorPivot: [3]float32{0.35, 2.3, 10.4},
			TerrainColor:   [4]float32{0.6, 0.6, 0.6, 1},
			BodyColor:      [4]float32{0.3, 0.3, 0.3, 1},
			DoorColor:      [4]float32{0.1, 0.1, 0.3, 1},
			MainRotorColor: [4]float32{0.3, 0.1, 0.1, 1},
			TailRotorColor: [4]float32{0.1, 0.3, 0.1, 1},
		},
		Assets: Assets{
			VertexShader:   "assets/shaders/simple.vert",
			FragmentShader: "assets/shaders/simple.frag",
			Terrain:        "assets/resources/lunarsurface.obj",
			Helicopter:     "assets/resources/helicopter.obj",
		},
		Log: Log{Level: "info"},
	}
}

// Load decodes the TOML file at path over Default. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the program cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Window.PollInterval <= 0:
		return errors.New("window.poll_interval must be positive")
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera.fov must be in (0, 180), got %v", c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera planes must satisfy 0 < near < far, got %v, %v", c.Camera.Near, c.Camera.Far)
	case c.Render.FPSLimit < 0:
		return errors.New("render.fps_limit must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
