package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/components"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/systems"
)

type WindowConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// Share of the window width given to the 3D viewport. The rest is left to the control panel.
	ViewportFraction float32 `toml:"viewport_fraction"`
	VSync            bool    `toml:"vsync"`
	// Sleep away the rest of each frame when below the target.
	LimitFrames bool `toml:"limit_frames"`
	TargetFPS   int  `toml:"target_fps"`
	// Background clear colour as #rrggbb.
	Background string `toml:"background"`
}

type CameraConfig struct {
	FOV      float32 `toml:"fov"`
	Near     float32 `toml:"near"`
	Far      float32 `toml:"far"`
	Distance float32 `toml:"distance"`
}

// AppearanceConfig is the initial card configuration in its textual form.
type AppearanceConfig struct {
	BaseColor     string  `toml:"base_color"`
	EdgeColor     string  `toml:"edge_color"`
	HotFoilColor  string  `toml:"hot_foil_color"`
	Metalness     float32 `toml:"metalness"`
	Roughness     float32 `toml:"roughness"`
	Opacity       float32 `toml:"opacity"`
	ReliefHeight  float32 `toml:"relief_height"`
	GrainSize     float32 `toml:"grain_size"`
	Finish        string  `toml:"finish"`
	LightingScene string  `toml:"lighting_scene"`
	// "always" keeps blending on; "auto" blends only below full opacity.
	Transparency string `toml:"transparency"`
	// Images uploaded at startup, keyed by channel name.
	Textures map[string]string `toml:"textures"`
}

type TextureConfig struct {
	MaxDimension uint32 `toml:"max_dimension"`
	FlipY        bool   `toml:"flip_y"`
	QueueSize    int    `toml:"queue_size"`
	// Re-upload texture files when they change on disk.
	Watch bool `toml:"watch"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`

	Window     WindowConfig        `toml:"window"`
	Camera     CameraConfig        `toml:"camera"`
	Orbit      systems.OrbitConfig `toml:"orbit"`
	Card       metadata.CardSpec   `toml:"card"`
	Appearance AppearanceConfig    `toml:"appearance"`
	Textures   TextureConfig       `toml:"textures"`
	Jobs       JobsConfig          `toml:"jobs"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	cfg := systems.DefaultConfiguration()
	return &ApplicationConfig{
		Name:     "cardforge",
		LogLevel: "info",
		Window: WindowConfig{
			StartPosX:        100,
			StartPosY:        100,
			StartWidth:       1280,
			StartHeight:      720,
			ViewportFraction: 0.7,
			VSync:            true,
			LimitFrames:      false,
			TargetFPS:        60,
			Background:       "#f0f0f0",
		},
		Camera: CameraConfig{
			FOV:      components.DefaultFOV,
			Near:     components.DefaultNear,
			Far:      components.DefaultFar,
			Distance: components.DefaultDistance,
		},
		Orbit: systems.DefaultOrbitConfig(),
		Card:  metadata.DefaultCardSpec(),
		Appearance: AppearanceConfig{
			BaseColor:     cfg.BaseColor.Hex(),
			EdgeColor:     cfg.EdgeColor.Hex(),
			HotFoilColor:  cfg.HotFoilColor.Hex(),
			Metalness:     cfg.Metalness,
			Roughness:     cfg.Roughness,
			Opacity:       cfg.Opacity,
			ReliefHeight:  cfg.ReliefHeight,
			GrainSize:     cfg.GrainSize,
			Finish:        cfg.Finish.String(),
			LightingScene: cfg.LightingScene.String(),
			Transparency:  "always",
			Textures:      map[string]string{},
		},
		Textures: TextureConfig{
			MaxDimension: 4096,
			FlipY:        true,
			QueueSize:    16,
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 16,
		},
	}
}

/**
 * @brief Reads a TOML file on top of the defaults. Keys that are not part of
 * the configuration are rejected.
 */
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%s: %w: %s", path, core.ErrInvalidParameter, strict.String())
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Window.StartWidth == 0 || c.Window.StartHeight == 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.StartWidth, c.Window.StartHeight, core.ErrInvalidParameter)
	}
	if !(c.Window.ViewportFraction > 0 && c.Window.ViewportFraction <= 1) {
		return fmt.Errorf("viewport fraction %v: %w", c.Window.ViewportFraction, core.ErrInvalidParameter)
	}
	if c.Window.TargetFPS <= 0 {
		return fmt.Errorf("target fps %d: %w", c.Window.TargetFPS, core.ErrInvalidParameter)
	}
	if _, err := metadata.ColorFromHex(c.Window.Background); err != nil {
		return err
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 || c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera fov %v near %v far %v: %w", c.Camera.FOV, c.Camera.Near, c.Camera.Far, core.ErrInvalidParameter)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := metadata.ParseTransparencyPolicy(c.Appearance.Transparency); err != nil {
		return err
	}
	for name := range c.Appearance.Textures {
		if _, err := metadata.ParseTextureChannel(name); err != nil {
			return err
		}
	}
	if c.Jobs.Workers <= 0 || c.Jobs.QueueSize < 0 || c.Textures.QueueSize <= 0 {
		return fmt.Errorf("jobs %d/%d, texture queue %d: %w", c.Jobs.Workers, c.Jobs.QueueSize, c.Textures.QueueSize, core.ErrInvalidParameter)
	}
	if _, err := c.InitialConfiguration(); err != nil {
		return err
	}
	return nil
}

// InitialConfiguration parses the appearance section into a Configuration.
func (c *ApplicationConfig) InitialConfiguration() (systems.Configuration, error) {
	cfg := systems.DefaultConfiguration()
	var err error
	if cfg.BaseColor, err = metadata.ColorFromHex(c.Appearance.BaseColor); err != nil {
		return cfg, err
	}
	if cfg.EdgeColor, err = metadata.ColorFromHex(c.Appearance.EdgeColor); err != nil {
		return cfg, err
	}
	if cfg.HotFoilColor, err = metadata.ColorFromHex(c.Appearance.HotFoilColor); err != nil {
		return cfg, err
	}
	if cfg.Finish, err = metadata.ParseFinish(c.Appearance.Finish); err != nil {
		return cfg, err
	}
	if cfg.LightingScene, err = metadata.ParseLightingScene(c.Appearance.LightingScene); err != nil {
		return cfg, err
	}
	cfg.Metalness = c.Appearance.Metalness
	cfg.Roughness = c.Appearance.Roughness
	cfg.Opacity = c.Appearance.Opacity
	cfg.ReliefHeight = c.Appearance.ReliefHeight
	cfg.GrainSize = c.Appearance.GrainSize
	return cfg, nil
}

func (c *ApplicationConfig) TransparencyPolicy() metadata.TransparencyPolicy {
	policy, _ := metadata.ParseTransparencyPolicy(c.Appearance.Transparency)
	return policy
}

func (c *ApplicationConfig) systemManagerConfig() systems.SystemManagerConfig {
	return systems.SystemManagerConfig{
		JobWorkers:   c.Jobs.Workers,
		JobQueueSize: c.Jobs.QueueSize,
		Textures: systems.TextureSystemConfig{
			MaxTextureDimension: c.Textures.MaxDimension,
			CompletionQueueSize: c.Textures.QueueSize,
			FlipY:               c.Textures.FlipY,
		},
		Orbit:        c.Orbit,
		Card:         c.Card,
		Transparency: c.TransparencyPolicy(),
	}
}
