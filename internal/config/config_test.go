package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/selector"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QUICK_HB_DIR", "QUICK_HB_GENDER", "QUICK_HB_SECTION_POLICY", "QUICK_HB_PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	tmpDir, err := os.MkdirTemp("", "quick-hb-config-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	t.Setenv("HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	expectedRoot := filepath.Join(tmpDir, ".quick-hb")
	if cfg.RootDir != expectedRoot {
		t.Errorf("Expected root %s, got %s", expectedRoot, cfg.RootDir)
	}
	if cfg.Gender() != models.Masculine {
		t.Errorf("Expected masculine default, got %s", cfg.Gender())
	}
	if cfg.Policy() != selector.PolicyWildcard {
		t.Errorf("Expected wildcard policy, got %s", cfg.Policy())
	}
	if !cfg.NumberedHeaders {
		t.Error("Expected numbered headers by default")
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
}

func TestLoadFromFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	content := "default_gender: w\nsection_policy: strict\nnumbered_headers: false\nport: 9000\ncache_size: 16\n"
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Gender() != models.Feminine {
		t.Errorf("Expected feminine from file, got %s", cfg.Gender())
	}
	if cfg.Policy() != selector.PolicyStrict {
		t.Errorf("Expected strict policy from file, got %s", cfg.Policy())
	}
	if cfg.NumberedHeaders {
		t.Error("Expected numbered headers to be disabled by file")
	}
	if cfg.CacheSize != 16 {
		t.Errorf("Expected cache size 16, got %d", cfg.CacheSize)
	}

	t.Setenv("QUICK_HB_PORT", "9100")
	t.Setenv("QUICK_HB_GENDER", "m")
	cfg, err = LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Expected env port 9100, got %d", cfg.Port)
	}
	if cfg.Gender() != models.Masculine {
		t.Errorf("Expected env gender to win, got %s", cfg.Gender())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("section_policy: loose\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(tmpDir); err == nil {
		t.Error("Expected error for unknown section policy")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("port: [1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(tmpDir); err == nil {
		t.Error("Expected error for malformed YAML")
	}

	os.Remove(filepath.Join(tmpDir, FileName))
	t.Setenv("QUICK_HB_PORT", "abc")
	if _, err := LoadFrom(tmpDir); err == nil {
		t.Error("Expected error for non-numeric port")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.RootDir = tmpDir
	cfg.DefaultGender = "w"
	cfg.Port = 7000
	if err := cfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if loaded.Port != 7000 || loaded.Gender() != models.Feminine {
		t.Errorf("Unexpected reloaded config: %+v", loaded)
	}
	if loaded.Path() != filepath.Join(tmpDir, FileName) {
		t.Errorf("Unexpected config path %s", loaded.Path())
	}
}
