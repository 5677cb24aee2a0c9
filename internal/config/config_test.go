package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-adala-mirror/internal/config"
)

func TestConfig_DefaultsAndValidate(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "c.yaml")
	// Minimal valid config
	_ = os.WriteFile(f, []byte("OUTPUT_DIR: ./out\nSIMPLE_MODE: true\n"), 0644)
	c, err := config.Load(f)
	if err != nil { t.Fatalf("load: %v", err) }
	if c.BaseURL == "" || len(c.RootFolders) == 0 { t.Fatalf("portal defaults not applied: %+v", c) }
	if c.MaxRetries != 3 || c.DownloadDelayMS != 500 || c.RetryDelayMS != 2000 { t.Fatalf("retry defaults not applied: %+v", c) }
	if c.Database.Type != "sqlite" || c.Database.DSN == "" { t.Fatalf("db defaults not applied: %+v", c.Database) }
	if c.LogFormat == "" || c.LogLocale == "" || c.LogColor == "" { t.Fatalf("log defaults missing") }
	if c.Timeout() != 60*time.Second || c.DownloadDelay() != 500*time.Millisecond { t.Fatalf("duration helpers wrong: %v %v", c.Timeout(), c.DownloadDelay()) }

	// Negative numbers should error
	_ = os.WriteFile(f, []byte("MAX_RETRIES: -1\n"), 0644)
	if _, err := config.Load(f); err == nil { t.Fatalf("expect error for negative MAX_RETRIES") }
	_ = os.WriteFile(f, []byte("DOWNLOAD_DELAY_MS: -5\n"), 0644)
	if _, err := config.Load(f); err == nil { t.Fatalf("expect error for negative DOWNLOAD_DELAY_MS") }
}

func TestConfig_RejectsUnknownDatabase(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "c.yaml")
	_ = os.WriteFile(f, []byte("DATABASE:\n  type: postgres\n"), 0644)
	if _, err := config.Load(f); err == nil { t.Fatalf("expect error for unsupported database type") }
}
