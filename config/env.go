package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv returns parse(value) for a set variable, or defaultVal when it is
// unset or fails to parse.
func getEnv[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	value, err := parse(valueStr)
	if err != nil {
		return defaultVal
	}
	return value
}

// Empty strings count as unset so `KEY=` in a .env file keeps the default
func getEnvAsString(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	return getEnv(key, defaultVal, strconv.Atoi)
}

func getEnvAsBool(key string, defaultVal bool) bool {
	return getEnv(key, defaultVal, strconv.ParseBool)
}

// getEnvAsTimeDuration accepts Go duration syntax ("15m") or a bare number of seconds.
func getEnvAsTimeDuration(key string, defaultVal time.Duration) time.Duration {
	return getEnv(key, defaultVal, parseDuration)
}

func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// getEnvAsSlice splits a comma separated list, dropping blank entries
func getEnvAsSlice(key string, defaultVal []string) []string {
	return getEnv(key, defaultVal, func(s string) ([]string, error) {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, v := range parts {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result, nil
	})
}
