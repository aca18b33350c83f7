package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// ConfigFileEnv names an optional YAML file. Its keys are the lower-case
// variable names (backend_base_url, join_policy, ...); environment variables
// take precedence over it.
const ConfigFileEnv = "CONFIG_FILE"

type Config struct {
	BackendBaseURL   string        `validate:"required,url"`
	BackendTimeout   time.Duration `validate:"gt=0"`
	BackendRPS       float64       `validate:"gte=0"`
	BackendBurst     int           `validate:"gte=0"`
	MaxConcurrency   int           `validate:"gte=0"`
	JoinPolicy       string        `validate:"oneof=fail-fast best-effort"`
	DirectoryRefresh string        `validate:"required"`
	Timezone         string        `validate:"omitempty,timezone"`
	ServerPort       string        `validate:"required"`
	MongoDBURI       string        `validate:"required"`
	MongoDBName      string        `validate:"required"`
	ViewTTL          time.Duration `validate:"gte=0"`
}

func LoadConfig() (*Config, error) {
	file, err := readFile(os.Getenv(ConfigFileEnv))
	if err != nil {
		return nil, err
	}

	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v, ok := file[strings.ToLower(key)]; ok && v != "" {
			return v
		}
		return fallback
	}

	config := &Config{
		BackendBaseURL:   get("BACKEND_BASE_URL", ""),
		JoinPolicy:       get("JOIN_POLICY", "fail-fast"),
		DirectoryRefresh: get("DIRECTORY_REFRESH", "@every 30s"),
		Timezone:         get("TIMEZONE", ""),
		ServerPort:       get("SERVER_PORT", ":8080"),
		MongoDBURI:       get("MONGODB_URI", ""),
		MongoDBName:      get("MONGODB_NAME", "ozondash"),
	}

	if config.BackendTimeout, err = time.ParseDuration(get("BACKEND_TIMEOUT", "10s")); err != nil {
		return nil, errors.Wrap(err, "invalid BACKEND_TIMEOUT")
	}
	if config.ViewTTL, err = time.ParseDuration(get("VIEW_TTL", "720h")); err != nil {
		return nil, errors.Wrap(err, "invalid VIEW_TTL")
	}
	if config.BackendRPS, err = strconv.ParseFloat(get("BACKEND_RPS", "0"), 64); err != nil {
		return nil, errors.Wrap(err, "invalid BACKEND_RPS")
	}
	if config.BackendBurst, err = strconv.Atoi(get("BACKEND_BURST", "1")); err != nil {
		return nil, errors.Wrap(err, "invalid BACKEND_BURST")
	}
	if config.MaxConcurrency, err = strconv.Atoi(get("MAX_CONCURRENCY", "0")); err != nil {
		return nil, errors.Wrap(err, "invalid MAX_CONCURRENCY")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(err, "failed to validate config")
	}

	return config, nil
}

// Location is the zone chart days and hours are computed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load timezone")
	}
	return loc, nil
}

func readFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return values, nil
}
