package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/router"
)

func validConfig() *Config {
	cfg := New()
	cfg.Routes = []RouteConfig{
		{Pattern: "", View: "<h1>Home</h1>"},
		{Pattern: "{accountNumber}", View: "<h1>{{.Vars.accountNumber}}</h1>"},
	}
	return cfg
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if cfg.Dev.Root != DefaultRoot {
		t.Errorf("Dev.Root = %q, want %q", cfg.Dev.Root, DefaultRoot)
	}
	if cfg.Analytics.S3.MaxBatch != DefaultMaxBatch {
		t.Errorf("S3.MaxBatch = %d, want %d", cfg.Analytics.S3.MaxBatch, DefaultMaxBatch)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if errors.Code(err) != "N141" {
		t.Errorf("Expected N141 for missing config, got %v", err)
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "name": "shop",
  "baseRoutes": ["Account", "account.aspx"],
  "routes": [
    {"pattern": "", "view": "<h1>Home</h1>"},
    {"pattern": "{accountNumber}/order/{orderNumber}", "view": "<p>{{.Vars.orderNumber}}</p>", "title": "Order"}
  ],
  "matching": {"anchoredBase": true},
  "dev": {
    "port": 8080,
    "host": "0.0.0.0"
  },
  "analytics": {
    "log": true,
    "prometheus": {"enabled": true},
    "s3": {"bucket": "shop-analytics", "flushInterval": "30s"}
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	if cfg.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, 8080)
	}
	if cfg.Dev.Host != "0.0.0.0" {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, "0.0.0.0")
	}
	if cfg.Dev.Title != "shop" {
		t.Errorf("Dev.Title = %q, want the app name", cfg.Dev.Title)
	}
	if len(cfg.Routes) != 2 || cfg.Routes[1].Title != "Order" {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
	if !cfg.Matching.AnchoredBase || cfg.Matching.StrictSegmentCount {
		t.Errorf("Matching = %+v", cfg.Matching)
	}
	if !cfg.Analytics.Log || !cfg.Analytics.Prometheus.Enabled {
		t.Errorf("Analytics = %+v", cfg.Analytics)
	}
	if cfg.Analytics.Prometheus.Namespace != DefaultNamespace {
		t.Errorf("Prometheus.Namespace = %q", cfg.Analytics.Prometheus.Namespace)
	}
	if cfg.Analytics.S3.Prefix != DefaultS3Prefix {
		t.Errorf("S3.Prefix = %q", cfg.Analytics.S3.Prefix)
	}
	if cfg.FlushInterval() != 30*time.Second {
		t.Errorf("FlushInterval() = %v", cfg.FlushInterval())
	}
	if cfg.Path() != configPath || cfg.Dir() != tmpDir {
		t.Errorf("Path() = %q, Dir() = %q", cfg.Path(), cfg.Dir())
	}

	bases := cfg.BaseRouteSet()
	if len(bases) != 2 || bases[0] != "account" {
		t.Errorf("BaseRouteSet() = %v", bases)
	}
	if len(cfg.RouterOptions()) != 1 {
		t.Errorf("RouterOptions() has %d options, want 1", len(cfg.RouterOptions()))
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	content := "{\n  \"routes\": [\n    oops\n  ]\n}\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "N120") {
		t.Errorf("Expected N120 error, got: %v", err)
	}

	var e *errors.Error
	if !stderrors.As(err, &e) || e.Location == nil {
		t.Fatalf("Expected a located error, got %#v", err)
	}
	if e.Location.Line != 3 || e.Location.Column != 5 {
		t.Errorf("Location = %s, want line 3 column 5", e.Location)
	}
}

func TestLoadFile_TypeError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"dev": {"port": "80"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "N120" {
		t.Fatalf("Expected N120, got %v", err)
	}
	if e.Location == nil || e.Location.Line != 1 {
		t.Errorf("Location = %v", e.Location)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := validConfig()
	cfg.Dev.Port = 9000

	// Save should fail without configPath set
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Dev.Port != 9000 {
		t.Errorf("Dev.Port = %d, want %d", loaded.Dev.Port, 9000)
	}
	if len(loaded.Routes) != 2 || loaded.Routes[1].Pattern != "{accountNumber}" {
		t.Errorf("Routes = %+v", loaded.Routes)
	}

	loaded.Dev.Port = 9001
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reloaded.Dev.Port != 9001 {
		t.Errorf("Dev.Port = %d, want %d", reloaded.Dev.Port, 9001)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		wantCode string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "negative port", modify: func(c *Config) { c.Dev.Port = -1 }, wantCode: "N121"},
		{name: "port too large", modify: func(c *Config) { c.Dev.Port = 70000 }, wantCode: "N121"},
		{name: "no routes", modify: func(c *Config) { c.Routes = nil }, wantCode: "N123"},
		{
			name: "duplicate route",
			modify: func(c *Config) {
				c.Routes = append(c.Routes, RouteConfig{Pattern: "{accountNumber}"})
			},
			wantCode: "N100",
		},
		{
			name: "bad view",
			modify: func(c *Config) {
				c.Routes[0].View = "{{.Vars"
			},
			wantCode: "N101",
		},
		{
			name: "bad flush interval",
			modify: func(c *Config) {
				c.Analytics.S3.Bucket = "b"
				c.Analytics.S3.FlushInterval = "soon"
			},
			wantCode: "N122",
		},
		{
			name: "flush interval ignored without bucket",
			modify: func(c *Config) {
				c.Analytics.S3.FlushInterval = "soon"
			},
		},
		{
			name: "negative batch",
			modify: func(c *Config) {
				c.Analytics.S3.Bucket = "b"
				c.Analytics.S3.MaxBatch = -1
			},
			wantCode: "N122",
		},
		{
			name: "pending cap below batch",
			modify: func(c *Config) {
				c.Analytics.S3.Bucket = "b"
				c.Analytics.S3.MaxBatch = 100
				c.Analytics.S3.MaxPending = 10
			},
			wantCode: "N122",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if got := errors.Code(err); got != tt.wantCode {
				t.Errorf("Validate() = %v, want code %q", err, tt.wantCode)
			}
		})
	}
}

func TestValidateDuplicateWrapsSentinel(t *testing.T) {
	cfg := validConfig()
	cfg.Routes = append(cfg.Routes, cfg.Routes[0])
	if err := cfg.Validate(); !stderrors.Is(err, router.ErrDuplicateRoute) {
		t.Errorf("Validate() = %v, want ErrDuplicateRoute", err)
	}
}

func TestDevAddress(t *testing.T) {
	cfg := New()
	if got := cfg.DevAddress(); got != "localhost:3000" {
		t.Errorf("DevAddress() = %q", got)
	}
	cfg.Dev.Host = "::1"
	cfg.Dev.Port = 8080
	if got := cfg.DevAddress(); got != "[::1]:8080" {
		t.Errorf("DevAddress() = %q", got)
	}
	if got := cfg.DevURL(); got != "http://[::1]:8080" {
		t.Errorf("DevURL() = %q", got)
	}
}

func TestFlushIntervalFallback(t *testing.T) {
	cfg := New()
	cfg.Analytics.S3.FlushInterval = "never"
	if cfg.FlushInterval() != time.Minute {
		t.Errorf("FlushInterval() = %v, want default", cfg.FlushInterval())
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Name: "shop"}
	cfg.applyDefaults()

	if cfg.Dev.Port != DefaultPort || cfg.Dev.Host != DefaultHost || cfg.Dev.Root != DefaultRoot {
		t.Errorf("Dev = %+v", cfg.Dev)
	}
	if cfg.Dev.Title != "shop" {
		t.Errorf("Dev.Title = %q", cfg.Dev.Title)
	}
	if cfg.Analytics.S3.FlushInterval != DefaultFlushInterval || cfg.Analytics.S3.MaxBatch != DefaultMaxBatch {
		t.Errorf("S3 = %+v", cfg.Analytics.S3)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	if Exists(tmpDir) {
		t.Error("Exists should be false for empty dir")
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	// Create nested directory structure
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Should fail when no config exists
	_, err := FindProjectRoot(nestedDir)
	if err == nil {
		t.Error("FindProjectRoot should fail when no config exists")
	}

	// Create config in root
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find root from nested directory
	root, err := FindProjectRoot(nestedDir)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}

	// Should find root from middle directory
	root, err = FindProjectRoot(filepath.Join(tmpDir, "a"))
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}
}
