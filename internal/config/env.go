package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadEnv loads environment variables from a .env file
func LoadEnv() error {
	// Try the current directory first, then parent directories
	envPaths := []string{".env", "../.env", "../../.env"}

	for _, envPath := range envPaths {
		if data, err := os.ReadFile(envPath); err == nil {
			lines := strings.Split(string(data), "\n")
			for _, line := range lines {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}

				parts := strings.SplitN(line, "=", 2)
				if len(parts) == 2 {
					key := strings.TrimSpace(parts[0])
					value := strings.TrimSpace(parts[1])

					// Only set if not already set
					if os.Getenv(key) == "" {
						os.Setenv(key, value)
					}
				}
			}
			break // Successfully loaded, don't try other paths
		}
	}
	return nil
}

// ApplyEnv overlays ADDRCLEAN_* environment variables onto the
// configuration. Environment values win over the YAML file, so
// deployments can redirect connections without editing config.
func (c *Config) ApplyEnv() {
	c.GNAF.ConnectionURL = GetEnv("ADDRCLEAN_GNAF_URL", c.GNAF.ConnectionURL)
	if c.GNAF.ConnectionURL == "" {
		c.GNAF.ConnectionURL = pgEnvDSN()
	}
	c.GNAF.Enabled = GetEnvBool("ADDRCLEAN_GNAF_ENABLED", c.GNAF.Enabled)
	c.MLModel.ModelPath = GetEnv("ADDRCLEAN_ML_MODEL", c.MLModel.ModelPath)
	c.MLModel.Enabled = GetEnvBool("ADDRCLEAN_ML_ENABLED", c.MLModel.Enabled)
	c.Processing.WorkerCount = GetEnvInt("ADDRCLEAN_WORKERS", c.Processing.WorkerCount)
	c.Processing.MaxBatchSize = GetEnvInt("ADDRCLEAN_MAX_BATCH_SIZE", c.Processing.MaxBatchSize)
	c.Server.Listen = GetEnv("ADDRCLEAN_LISTEN", c.Server.Listen)
}

// pgEnvDSN assembles a connection string from the standard PG*
// variables. Empty unless PGDATABASE is set.
func pgEnvDSN() string {
	dbname := os.Getenv("PGDATABASE")
	if dbname == "" {
		return ""
	}

	host := GetEnv("PGHOST", "localhost")
	port := GetEnv("PGPORT", "5432")
	user := GetEnv("PGUSER", "postgres")
	sslmode := GetEnv("PGSSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		host, port, user, dbname, sslmode)
	if password := os.Getenv("PGPASSWORD"); password != "" {
		dsn += " password=" + password
	}

	return dsn
}

// GetEnv gets environment variable with default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets integer environment variable with default
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvFloat gets float environment variable with default
func GetEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvBool gets boolean environment variable with default
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}
