package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ListenAddr != ":8000" {
		t.Errorf("listen_addr = %q", cfg.ListenAddr)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("chunk_size = %d, want %d", cfg.ChunkSize, DefaultChunkSize)
	}
	if cfg.SessionTTLHours != 24 || cfg.SweepIntervalMin != 30 {
		t.Errorf("ttl/sweep defaults wrong: %d/%d", cfg.SessionTTLHours, cfg.SweepIntervalMin)
	}
}

func TestLoad_YamlAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen_addr: \":9100\"\nupload_dir: /srv/files\nchunk_size: 1048576\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LISTEN_ADDR", ":9200")
	t.Setenv("SESSION_TTL_HOURS", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// ENV выигрывает у файла.
	if cfg.ListenAddr != ":9200" {
		t.Errorf("listen_addr = %q, want :9200", cfg.ListenAddr)
	}
	if cfg.UploadDir != "/srv/files" {
		t.Errorf("upload_dir = %q", cfg.UploadDir)
	}
	if cfg.ChunkSize != 1048576 {
		t.Errorf("chunk_size = %d", cfg.ChunkSize)
	}
	if cfg.SessionTTLHours != 6 {
		t.Errorf("session_ttl_hours = %d", cfg.SessionTTLHours)
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	c = Default()
	c.ChunkSize = 512
	if err := c.Validate(); err == nil {
		t.Error("tiny chunk_size accepted")
	}

	c = Default()
	c.MaxFileSize = -1
	if err := c.Validate(); err == nil {
		t.Error("negative max_file_size accepted")
	}

	c = Default()
	c.UploadDir = ""
	if err := c.Validate(); err == nil {
		t.Error("empty upload_dir accepted")
	}

	c = Default()
	c.SweepIntervalMin = 0
	if err := c.Validate(); err == nil {
		t.Error("zero sweep interval accepted")
	}
}
