package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectCommand_MissingSitemapURL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "collect",
		"--store", filepath.Join(tmpDir, "test.db"))
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "sitemap URL required")
}

func TestCollectCommand_InvalidConfigPath(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "collect",
		"--config", "/nonexistent/config.json")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to load config")
}

func TestCollectCommand_SitemapFromConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.json")
	configJSON := `{"sitemap_url": "https://localhost:1/sitemap.xml", "store_path": "` + filepath.Join(tmpDir, "test.db") + `", "max_pages": 2}`
	require.NoError(t, os.WriteFile(configPath, []byte(configJSON), 0644))

	// Sitemap host is unreachable so the command fails, but it must get past
	// config loading and flag validation first.
	cmd := exec.Command(binaryPath, "collect", "--config", configPath)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.NotContains(t, string(output), "sitemap URL required")
	assert.Contains(t, string(output), "collect failed")
}

func TestCollectCommand_InvalidSitemapURL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"sitemap_url": "not-a-url"}`), 0644))

	cmd := exec.Command(binaryPath, "collect", "--config", configPath)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "config error")
}
