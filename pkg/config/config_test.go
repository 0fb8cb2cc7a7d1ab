package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kitbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mqtt:
  brokers:
    - tcp://broker.internal:1883
  clientID: kitbridge-test
database:
  connString: postgres://localhost/kits
rateLimit:
  perSecond: 5
  capacity: 60
rpc:
  timeout: 10s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"tcp://broker.internal:1883"}, cfg.MQTT.Brokers)
	assert.Equal(t, "kitbridge-test", cfg.MQTT.ClientID)
	assert.Equal(t, "postgres://localhost/kits", cfg.Database.ConnString)
	assert.Equal(t, 5.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 60, cfg.RateLimit.Capacity)
	assert.Equal(t, 10*time.Second, cfg.RPC.Timeout)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, 30*time.Second, cfg.MQTT.KeepAlive)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"tcp://127.0.0.1:1883"}, cfg.MQTT.Brokers)
	assert.Equal(t, 2.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
	assert.Equal(t, 30*time.Second, cfg.RPC.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
}
