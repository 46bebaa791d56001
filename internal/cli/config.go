package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/pipeline"
)

const configFile = "kintower.toml"

// Config is the kintower.toml file.
//
//	[layout]
//	max_nodes = 80
//	related_multiplier = 0.7
//
//	[cache]
//	dir = "/var/cache/kintower"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig overrides the layout defaults. Zero values keep the default.
type LayoutConfig struct {
	MaxNodes             int     `toml:"max_nodes"`
	RelatedMultiplier    float64 `toml:"related_multiplier"`
	GenerationMultiplier float64 `toml:"generation_multiplier"`
	ChildMultiplier      float64 `toml:"child_multiplier"`
	NodeWidth            float64 `toml:"node_width"`
	NodeHeight           float64 `toml:"node_height"`
	NodeSpacing          float64 `toml:"node_spacing"`
	GroupSpacing         float64 `toml:"group_spacing"`
	RowSpacing           float64 `toml:"row_spacing"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// duration decodes TOML strings such as "36h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// configPath returns the config file location using XDG standard
// (~/.config/kintower/kintower.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}

// loadConfig reads path. A missing file at the default location yields an
// empty config; a missing file given explicitly is an error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFile, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFile, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

// apply copies the configured layout values into opts where the command
// line left them unset.
func (c LayoutConfig) apply(opts *pipeline.Options) {
	setInt(&opts.MaxNodes, c.MaxNodes)
	setFloat(&opts.RelatedMultiplier, c.RelatedMultiplier)
	setFloat(&opts.GenerationMultiplier, c.GenerationMultiplier)
	setFloat(&opts.ChildMultiplier, c.ChildMultiplier)
	setFloat(&opts.NodeWidth, c.NodeWidth)
	setFloat(&opts.NodeHeight, c.NodeHeight)
	setFloat(&opts.NodeSpacing, c.NodeSpacing)
	setFloat(&opts.GroupSpacing, c.GroupSpacing)
	setFloat(&opts.RowSpacing, c.RowSpacing)
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}
