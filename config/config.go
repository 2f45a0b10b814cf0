// Package config loads runtime settings for the stocsim command.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/bcdannyboy/stocsim/models"
	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/mem"
)

// Config holds settings that are not part of a simulation's parameters.
type Config struct {
	LogLevel          string
	LogPretty         bool
	Seed              uint64 // 0 picks a time based seed per run
	Workers           int
	Limits            models.Limits
	JumpWarnThreshold float64
	StoreDir          string // empty disables archiving
}

// memoryShare is the fraction of available memory one result may occupy.
const memoryShare = 4

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnv("STOCSIM_LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("STOCSIM_LOG_PRETTY", false),
		Seed:              getEnvAsUint64("STOCSIM_SEED", 0),
		Workers:           getEnvAsInt("STOCSIM_WORKERS", runtime.GOMAXPROCS(0)),
		JumpWarnThreshold: getEnvAsFloat("STOCSIM_JUMP_WARN_THRESHOLD", models.DefaultWarnThreshold),
		StoreDir:          getEnv("STOCSIM_STORE_DIR", ""),
		Limits: models.Limits{
			MaxSteps:   getEnvAsInt("STOCSIM_MAX_STEPS", models.DefaultLimits().MaxSteps),
			MaxSamples: getEnvAsInt("STOCSIM_MAX_SAMPLES", defaultMaxSamples()),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("STOCSIM_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.Limits.MaxSteps < 0 || c.Limits.MaxSamples < 0 {
		return fmt.Errorf("limits must not be negative (steps %d, samples %d)", c.Limits.MaxSteps, c.Limits.MaxSamples)
	}
	if c.JumpWarnThreshold < 0 {
		return fmt.Errorf("STOCSIM_JUMP_WARN_THRESHOLD must not be negative, got %g", c.JumpWarnThreshold)
	}
	return nil
}

// defaultMaxSamples sizes results to a quarter of available memory, never
// above the package default.
func defaultMaxSamples() int {
	limit := models.DefaultLimits().MaxSamples
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Available == 0 {
		return limit
	}
	fromMemory := vm.Available / memoryShare / 8
	if fromMemory < uint64(limit) {
		return int(fromMemory)
	}
	return limit
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
