package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup parses the variable with parse and falls back to defaultVal when it is
// unset or unparsable.
func lookup[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	v, err := parse(value)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnv(key, defaultVal string) string {
	return lookup(key, defaultVal, func(s string) (string, error) { return s, nil })
}

func getEnvAsInt(key string, defaultVal int) int {
	return lookup(key, defaultVal, func(s string) (int, error) { return strconv.Atoi(strings.TrimSpace(s)) })
}

func getEnvAsBool(key string, defaultVal bool) bool {
	return lookup(key, defaultVal, func(s string) (bool, error) { return strconv.ParseBool(strings.TrimSpace(s)) })
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	return lookup(key, defaultVal, func(s string) (time.Duration, error) { return time.ParseDuration(strings.TrimSpace(s)) })
}

func getEnvAsStringSlice(key string, defaults []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaults
	}
	parts := strings.Split(value, ",")
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return defaults
	}
	return filtered
}
