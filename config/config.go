package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/domain/capture"
	"github.com/soocke/virtual-fence-go/domain/fence"
)

// AppName names the per-user config and data directories.
const AppName = "virtual-fence"

// Config holds runtime configuration for the camera, scene and outputs.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug                bool `json:"debug"`
	DebugIntervalSeconds int  `json:"debug_interval_seconds"`

	Camera camera.Params `json:"camera"`

	// Ground plane extent in world units (width along Z, depth along X).
	GroundWidth float64 `json:"ground_width"`
	GroundDepth float64 `json:"ground_depth"`

	FenceHeight float64 `json:"fence_height"`
	FenceRadius float64 `json:"fence_radius"`

	MaskPath string `json:"mask_path"`
	DBPath   string `json:"db_path"`

	PreviewWidth     int `json:"preview_width"`
	PreviewCacheSize int `json:"preview_cache_size"`
}

// DefaultPath is $XDG_CONFIG_HOME/virtual-fence/config.json.
func DefaultPath() string { return filepath.Join(xdg.ConfigHome, AppName, "config.json") }

// DataDir is where masks and the capture log go by default.
func DataDir() string { return filepath.Join(xdg.DataHome, AppName) }

// DefaultConfig returns a Config populated with standard defaults. The camera
// starts panned 20 and tilted 30 degrees.
func DefaultConfig() *Config {
	cam := camera.DefaultParams()
	cam.PanDeg, cam.TiltDeg = 20, 30
	return &Config{
		Debug:                false,
		DebugIntervalSeconds: 10,
		Camera:               cam,
		GroundWidth:          320,
		GroundDepth:          240,
		FenceHeight:          fence.DefaultHeight,
		FenceRadius:          fence.DefaultRadius,
		MaskPath:             filepath.Join(DataDir(), capture.DefaultMaskFile),
		DBPath:               filepath.Join(DataDir(), "captures.db"),
		PreviewWidth:         960,
		PreviewCacheSize:     32,
	}
}

// Validate normalizes scene and output values to safe ranges. Camera values are
// never clamped: an invalid camera is returned as an error.
func (c *Config) Validate() error {
	if c.DebugIntervalSeconds <= 0 {
		c.DebugIntervalSeconds = 10
	}
	if !(c.GroundWidth > 0) {
		c.GroundWidth = 320
	}
	if !(c.GroundDepth > 0) {
		c.GroundDepth = 240
	}
	if c.FenceHeight < fence.MinHeight || c.FenceHeight >= fence.MaxHeight {
		c.FenceHeight = fence.DefaultHeight
	}
	if c.FenceRadius < fence.MinRadius || c.FenceRadius >= c.GroundDepth*0.5 {
		c.FenceRadius = fence.MinRadius
		if fence.DefaultRadius < c.GroundDepth*0.5 {
			c.FenceRadius = fence.DefaultRadius
		}
	}
	if c.MaskPath == "" {
		c.MaskPath = filepath.Join(DataDir(), capture.DefaultMaskFile)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(DataDir(), "captures.db")
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = 960
	}
	if c.PreviewCacheSize <= 0 {
		c.PreviewCacheSize = 32
	}
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On a decode or validation error the returned config
// still holds usable defaults for everything but the failing part.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Overrides are command-line values applied on top of the file.
type Overrides struct {
	Debug    bool
	MaskPath string
}

// Resolve loads path and applies o. If the file cannot be used, the defaults are
// returned with the load error and o is still applied to them.
func Resolve(path string, o Overrides) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	if o.Debug {
		cfg.Debug = true
	}
	if o.MaskPath != "" {
		cfg.MaskPath = o.MaskPath
	}
	return cfg, err
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
