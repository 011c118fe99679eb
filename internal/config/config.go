package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

const (
	defaultEnv    = "dev"
	defaultDriver = "sqlite"
	defaultDSN    = "./dev.db"
	defaultPort   = "8080"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env         string   `yaml:"env"`
	Port        string   `yaml:"port"`
	DBDriver    string   `yaml:"db_driver"`
	DBDSN       string   `yaml:"db_dsn"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Load reads environment variables and returns a populated Config.
// Values from the YAML file named by CONFIG_FILE sit below the environment;
// a named file that cannot be read or parsed is an error.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: read .env: %v", err)
	}

	cfg := Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	overrideFromEnv(&cfg.Env, "APP_ENV")
	overrideFromEnv(&cfg.Port, "PORT")
	overrideFromEnv(&cfg.DBDriver, "DB_DRIVER")
	overrideFromEnv(&cfg.DBDSN, "DB_PATH")
	overrideFromEnv(&cfg.DBDSN, "DB_DSN")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = defaultDriver
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = defaultDSN
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)

	if len(cfg.CORSOrigins) == 0 {
		if cfg.IsDev() {
			log.Print("warning: CORS_ORIGINS is not set, all origins are allowed in dev")
		} else {
			log.Print("warning: CORS_ORIGINS is not set, cross-origin requests are disabled")
		}
	}

	return cfg, nil
}

// IsDev reports whether the service runs in the local development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// AllowedOrigins returns the CORS origins to serve. In dev an empty list
// allows every origin; elsewhere it stays empty and CORS is disabled.
func (c Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) == 0 && c.IsDev() {
		return []string{"*"}
	}
	return c.CORSOrigins
}

// Validate checks values that Load cannot default.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is empty")
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN is empty")
	}
	return nil
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
