package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type StoreConfig struct {
	Kind string `yaml:"kind"`
	DSN  string `yaml:"dsn,omitempty"`
}

type MigrateConfig struct {
	Tables     []string `yaml:"tables,omitempty"`
	Workers    int      `yaml:"workers,omitempty"`
	Escape     string   `yaml:"escape,omitempty"`
	Encoding   string   `yaml:"encoding,omitempty"`
	Timezone   string   `yaml:"timezone,omitempty"`
	MaxSamples int      `yaml:"max_samples,omitempty"`
	Timeout    string   `yaml:"timeout,omitempty"`
}

type ReportConfig struct {
	JSON           string `yaml:"json,omitempty"`
	PushgatewayURL string `yaml:"pushgateway_url,omitempty"`
	Job            string `yaml:"job,omitempty"`
}

type LogConfig struct {
	Format string `yaml:"format,omitempty"`
}

// ProjectConfig is the content of pmig.yaml. Every field is optional;
// command-line flags override the values they set explicitly.
type ProjectConfig struct {
	Store   StoreConfig   `yaml:"store"`
	Migrate MigrateConfig `yaml:"migrate"`
	Report  ReportConfig  `yaml:"report"`
	Log     LogConfig     `yaml:"log"`
}

const ConfigFileName = "pmig.yaml"

// Load reads the config file at path.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDir reads pmig.yaml from dir.
func LoadDir(dir string) (*ProjectConfig, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}
