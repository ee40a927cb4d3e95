package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Name    string        `env:"CP_TEST_NAME" default:"tracker"`
	Port    int           `env:"CP_TEST_PORT" default:"8080"`
	Enabled bool          `env:"CP_TEST_ENABLED" default:"true"`
	Step    float64       `env:"CP_TEST_STEP" default:"0.00025"`
	Every   time.Duration `env:"CP_TEST_EVERY" default:"1s"`
	Nested  struct {
		Driver string `env:"CP_TEST_STORE_DRIVER" default:"file"`
	}
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}

	if cfg.Name != "tracker" || cfg.Port != 8080 || !cfg.Enabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Step != 0.00025 || cfg.Every != time.Second {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.Nested.Driver != "file" {
		t.Fatalf("nested default not applied: %q", cfg.Nested.Driver)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("CP_TEST_PORT", "9090")
	t.Setenv("CP_TEST_STORE_DRIVER", "sqlite")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Port)
	}
	if cfg.Nested.Driver != "sqlite" {
		t.Fatalf("driver = %q, want sqlite", cfg.Nested.Driver)
	}
}

func TestParseEnvBadValue(t *testing.T) {
	t.Setenv("CP_TEST_PORT", "not-a-number")

	var cfg testConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected error for invalid int")
	}
}

func TestParseEnvRejectsNonPointer(t *testing.T) {
	if err := ParseEnv(testConfig{}); err != ErrNotStructPointer {
		t.Fatalf("err = %v, want ErrNotStructPointer", err)
	}
}

func TestLoadYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "cp_yaml:\n  store:\n    driver: sqlite\n  port: 7070\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CP_YAML_PORT", "6060")
	os.Unsetenv("CP_YAML_STORE_DRIVER")
	t.Cleanup(func() { os.Unsetenv("CP_YAML_STORE_DRIVER") })

	if err := LoadYamlFile(path); err != nil {
		t.Fatalf("LoadYamlFile: %v", err)
	}

	if got := os.Getenv("CP_YAML_STORE_DRIVER"); got != "sqlite" {
		t.Fatalf("CP_YAML_STORE_DRIVER = %q, want sqlite", got)
	}
	if got := os.Getenv("CP_YAML_PORT"); got != "6060" {
		t.Fatalf("environment should win, got %q", got)
	}
}

func TestLoadYamlFileNoPath(t *testing.T) {
	if err := LoadYamlFile(""); err != ErrNoFilePath {
		t.Fatalf("err = %v, want ErrNoFilePath", err)
	}
}
