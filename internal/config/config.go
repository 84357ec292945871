package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"qddcheck/internal/backend"
	"qddcheck/internal/compare"
	"qddcheck/internal/dense"
)

// Config holds application configuration
type Config struct {
	Backend           string
	MaxDenseQubits    int
	MemorySampling    bool
	FidelityTolerance float64
	LogLevel          string
	LogPretty         bool
}

// Load reads configuration from a .env file, when present, and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Backend:           getEnv("QDD_BACKEND", backend.KernelName),
		MaxDenseQubits:    getEnvAsInt("QDD_MAX_DENSE_QUBITS", dense.DefaultMaxQubits),
		MemorySampling:    getEnvAsBool("QDD_MEMORY_SAMPLING", true),
		FidelityTolerance: getEnvAsFloat("QDD_FIDELITY_TOLERANCE", compare.DefaultTolerance),
		LogLevel:          getEnv("QDD_LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("QDD_LOG_PRETTY", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configured limits
func (c *Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("QDD_BACKEND is required")
	}
	if c.MaxDenseQubits < 1 {
		return fmt.Errorf("QDD_MAX_DENSE_QUBITS must be positive, got %d", c.MaxDenseQubits)
	}
	if c.FidelityTolerance < 0 || c.FidelityTolerance >= 1 {
		return fmt.Errorf("QDD_FIDELITY_TOLERANCE must be in [0,1), got %g", c.FidelityTolerance)
	}
	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
