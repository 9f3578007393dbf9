package config

import (
	"os"
	"path/filepath"

	"github.com/logdeck/logdeck/pkg/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type APIConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Listen      string `yaml:"listen"`
	Database    string `yaml:"database"`
	WebDir      string `yaml:"web_dir"`
	OpenBrowser bool   `yaml:"open_browser"`
}

type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:            "http://127.0.0.1:5000",
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Listen:      "127.0.0.1:5000",
			Database:    "logs_db.db",
			OpenBrowser: true,
		},
	}
}

// Load reads the YAML config file over the defaults. The default
// location is <home>/logdeck.yml; a missing file there is fine, but a
// path given explicitly via --config must exist.
func Load(cli *types.CLI, home string) (*Config, error) {
	cfg := Default()

	path := cli.ConfigPath
	if path == "" {
		path = filepath.Join(home, "logdeck.yml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && cli.ConfigPath == "" {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return cfg, nil
}
