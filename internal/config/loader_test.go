package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_YAML(t *testing.T) {
	data := []byte(`
url: https://api.example.com/health
requests: 500
concurrency: 25
timeout: 5s
method: post
headers:
  Authorization: Bearer token
`)

	cfg, err := ParseConfig(data, "profile.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/health", cfg.URL)
	assert.Equal(t, 500, cfg.TotalRequests)
	assert.Equal(t, 25, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "POST", cfg.RequestMethod())
	assert.Equal(t, "Bearer token", cfg.Headers["Authorization"])
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig_JSON(t *testing.T) {
	data := []byte(`{"url": "http://localhost:9000", "concurrency": 4, "timeout": "250ms", "output": "out.json"}`)

	cfg, err := ParseConfig(data, "profile.json")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.URL)
	assert.Equal(t, DefaultRequests, cfg.TotalRequests, "missing fields keep defaults")
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout())
	assert.Equal(t, "out.json", cfg.OutputPath)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte(`{"url": `), "bad.json")
	assert.Error(t, err)

	_, err = ParseConfig([]byte("requests: [1, 2"), "bad.yml")
	assert.Error(t, err)

	_, err = ParseConfig([]byte("timeout: forever"), "bad.yaml")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yml")
	require.NoError(t, os.WriteFile(path, []byte("url: http://localhost\nrequests: 7\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TotalRequests)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)

	_, err = LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(b))

	var parsed Duration
	require.NoError(t, parsed.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, Duration(0), parsed)
}
