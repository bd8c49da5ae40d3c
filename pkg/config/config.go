package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the tool needs to know about its surroundings.
// Values come from (in increasing precedence) built-in defaults, an optional
// YAML file and PCS_* environment variables.
type Config struct {
	RaceFolder     string          `yaml:"race_folder"`
	SettingsFolder string          `yaml:"settings_folder"`
	StateDB        string          `yaml:"state_db"`
	COBonus        int             `yaml:"co_bonus"`
	Scheduler      SchedulerConfig `yaml:"scheduler"`
}

// SchedulerConfig controls the optional periodic re-run of the pipeline.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CronSpec string `yaml:"cron"` // standard 5-field spec, server local time
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RaceFolder:     "race",
		SettingsFolder: "settings",
		StateDB:        "pcsystem.db",
		COBonus:        500,
		Scheduler: SchedulerConfig{
			Enabled:  false,
			CronSpec: "*/10 * * * *",
		},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// only defaults and environment variables apply. A missing file at the
// default location is not an error; a named file that cannot be read is.
func Load(path string, pathExplicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if pathExplicit || !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// .env is a developer convenience, ignore a missing one
	_ = godotenv.Load()

	cfg.RaceFolder = getEnv("PCS_RACE_FOLDER", cfg.RaceFolder)
	cfg.SettingsFolder = getEnv("PCS_SETTINGS_FOLDER", cfg.SettingsFolder)
	cfg.StateDB = getEnv("PCS_STATE_DB", cfg.StateDB)
	cfg.COBonus = getEnvInt("PCS_CO_BONUS", cfg.COBonus)
	cfg.Scheduler.CronSpec = getEnv("PCS_SCHEDULER_CRON", cfg.Scheduler.CronSpec)
	if v, ok := os.LookupEnv("PCS_SCHEDULER_ENABLED"); ok {
		cfg.Scheduler.Enabled = v == "true" || v == "1"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
