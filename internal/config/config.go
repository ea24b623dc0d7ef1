// Package config loads the runtime configuration for the share allocation
// engine. Values layer in increasing precedence: built-in defaults, an
// optional YAML file, then ENERSHARE_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" envconfig:"SIMULATION"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
}

// SimulationConfig carries the model-wide switches and horizon settings.
type SimulationConfig struct {
	StartYear int `yaml:"start_year" envconfig:"START_YEAR"`
	YearStep  int `yaml:"year_step" envconfig:"YEAR_STEP"`
	Periods   int `yaml:"periods" envconfig:"PERIODS"`

	// CalibrationActive enables calibration adjustment and post-calibration
	// share-weight interpolation.
	CalibrationActive bool `yaml:"calibration_active" envconfig:"CALIBRATION_ACTIVE"`
	// DebugChecking enables additional diagnostic checks in the engine.
	DebugChecking bool `yaml:"debug_checking" envconfig:"DEBUG_CHECKING"`

	// ScaleYear bounds share-weight interpolation after calibration. Zero
	// means the model end year.
	ScaleYear int `yaml:"scale_year" envconfig:"SCALE_YEAR"`
	// CalibrationBoundaryYear is the last historical year; interpolation
	// never reaches back past it.
	CalibrationBoundaryYear int `yaml:"calibration_boundary_year" envconfig:"CALIBRATION_BOUNDARY_YEAR"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	ScenarioFile string `yaml:"scenario_file" envconfig:"SCENARIO_FILE"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	ResultsDB    string `yaml:"results_db" envconfig:"RESULTS_DB"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load builds the configuration. An empty path checks the default config
// file locations; a missing default file is not an error.
func Load(configFile string) (*Config, error) {
	cfg := *Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Without default tags envconfig touches only fields whose variable is
	// actually set, so file values survive.
	if err := envconfig.Process("ENERSHARE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.StartYear <= 0 {
		return fmt.Errorf("invalid start year: %d", c.Simulation.StartYear)
	}
	if c.Simulation.YearStep <= 0 {
		return fmt.Errorf("year step must be positive, got %d", c.Simulation.YearStep)
	}
	if c.Simulation.Periods < 1 {
		return fmt.Errorf("at least one period required, got %d", c.Simulation.Periods)
	}
	if c.Simulation.ScaleYear != 0 && c.Simulation.ScaleYear < c.Simulation.StartYear {
		return fmt.Errorf("scale year %d precedes start year %d",
			c.Simulation.ScaleYear, c.Simulation.StartYear)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/enershare.log"
	}
	return nil
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StartYear:               1975,
			YearStep:                15,
			Periods:                 9,
			CalibrationActive:       true,
			CalibrationBoundaryYear: 1990,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/enershare.log",
		},
		Paths: PathsConfig{
			ScenarioFile: "scenario.yaml",
			OutputDir:    "output",
			ResultsDB:    "output/results.db",
			LogsDir:      "logs",
		},
	}
}
