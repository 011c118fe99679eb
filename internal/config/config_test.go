package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestLoadDotEnv_KeepsProcessEnvironment(t *testing.T) {
	t.Setenv("DELIVERY_TEST_PORT", "7000")
	unsetenv(t, "DELIVERY_TEST_DSN")

	path := filepath.Join(t.TempDir(), ".env")
	dotenv := "DELIVERY_TEST_PORT=9999\nDELIVERY_TEST_DSN=./from-dotenv.db\n"
	if err := os.WriteFile(path, []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("DELIVERY_TEST_PORT"); got != "7000" {
		t.Fatalf("DELIVERY_TEST_PORT=%q, process value must win", got)
	}
	if got := os.Getenv("DELIVERY_TEST_DSN"); got != "./from-dotenv.db" {
		t.Fatalf("DELIVERY_TEST_DSN=%q, want value from dotenv", got)
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}

func TestLoad_YAMLFileBelowEnvironment(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "DB_DRIVER", "DB_PATH", "DB_DSN", "CORS_ORIGINS"} {
		unsetenv(t, key)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
env: prod
port: "9000"
db_driver: postgres
db_dsn: postgres://localhost/delivery
cors_origins:
  - https://shop.example
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "prod" || cfg.IsDev() {
		t.Fatalf("Env=%q, want prod", cfg.Env)
	}
	if cfg.Port != "7000" {
		t.Fatalf("Port=%q, want env override 7000", cfg.Port)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://localhost/delivery" {
		t.Fatalf("unexpected db config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://shop.example" {
		t.Fatalf("CORSOrigins=%v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "APP_ENV", "PORT", "DB_DRIVER", "DB_PATH", "DB_DSN"} {
		unsetenv(t, key)
	}
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.IsDev() || cfg.Port != "8080" || cfg.DBDriver != "sqlite" || cfg.DBDSN != "./dev.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins=%v, want 2 entries", cfg.CORSOrigins)
	}
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := Config{Port: "8080", DBDriver: "mysql", DBDSN: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for mysql driver")
	}
}

func TestLoad_NamedConfigFileMustLoad(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("port: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", broken)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparsable config file")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"dev without origins allows all", Config{Env: "dev"}, []string{"*"}},
		{"prod without origins disables cors", Config{Env: "prod"}, nil},
		{"explicit origins win", Config{Env: "prod", CORSOrigins: []string{"https://shop.example"}}, []string{"https://shop.example"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.cfg.AllowedOrigins()
			if len(got) != len(tc.want) {
				t.Fatalf("AllowedOrigins = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("AllowedOrigins = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
