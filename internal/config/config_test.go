package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Source.URL != "https://api.uouin.com/cloudflare.html" {
		t.Errorf("Source.URL = %q, want default", cfg.Source.URL)
	}
	if cfg.Source.Provider != "电信" || cfg.Source.Label != "Cloudflare" {
		t.Errorf("Source = %+v, want 电信/Cloudflare defaults", cfg.Source)
	}
	if cfg.Fetch.Timeout != 20 {
		t.Errorf("Fetch.Timeout = %d, want 20", cfg.Fetch.Timeout)
	}
	if cfg.Storage.Type != "file" || cfg.Storage.FileName != "dx.txt" {
		t.Errorf("Storage = %+v, want file/dx.txt defaults", cfg.Storage)
	}
	if cfg.Task.PeriodicHarvest != "" {
		t.Errorf("Task.PeriodicHarvest = %q, want empty (one-shot)", cfg.Task.PeriodicHarvest)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[source]
url = "https://example.com/status.html"
provider = "联通"

[storage]
type = "redis"
redis_host = "10.0.0.5"
redis_port = 6380

[task]
periodicHarvest = "*/30 * * * *"

[apiserver]
switch = "open"
token = "secret"
port = 9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Source.URL != "https://example.com/status.html" {
		t.Errorf("Source.URL = %q, want override", cfg.Source.URL)
	}
	if cfg.Source.Provider != "联通" {
		t.Errorf("Source.Provider = %q, want 联通", cfg.Source.Provider)
	}
	// 未出现的键保持默认值
	if cfg.Source.Label != "Cloudflare" {
		t.Errorf("Source.Label = %q, want default Cloudflare", cfg.Source.Label)
	}
	if cfg.Storage.Type != "redis" || cfg.Storage.RedisHost != "10.0.0.5" || cfg.Storage.RedisPort != 6380 {
		t.Errorf("Storage = %+v, want redis overrides", cfg.Storage)
	}
	if cfg.Task.PeriodicHarvest != "*/30 * * * *" {
		t.Errorf("Task.PeriodicHarvest = %q, want cron spec", cfg.Task.PeriodicHarvest)
	}
	if cfg.APIServer.Switch != "open" || cfg.APIServer.Token != "secret" || cfg.APIServer.Port != 9000 {
		t.Errorf("APIServer = %+v, want open/secret/9000", cfg.APIServer)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[source\nurl = oops"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() expected error for malformed file")
	}
}
