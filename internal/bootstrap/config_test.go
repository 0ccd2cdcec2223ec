package bootstrap

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSetupDefaults(t *testing.T) {
    cfg, err := Setup("")
    require.NoError(t, err)
    assert.Equal(t, "localhost", cfg.ServerHost)
    assert.Equal(t, 8080, cfg.ServerPort)
    assert.Equal(t, "info", cfg.LogLevel)
    assert.False(t, cfg.Dev)
    assert.Equal(t, 15*time.Second, cfg.HeartbeatInterval)
    assert.Equal(t, 1, cfg.SubscriberBuffer)
    assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
    assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestSetupFromFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "othello.yaml")
    body := "SERVER_HOST: 0.0.0.0\nSERVER_PORT: 9000\nLOG_LEVEL: debug\nDEV: true\nHEARTBEAT_INTERVAL: 3s\n"
    require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

    cfg, err := Setup(path)
    require.NoError(t, err)
    assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
    assert.Equal(t, "debug", cfg.LogLevel)
    assert.True(t, cfg.Dev)
    assert.Equal(t, 3*time.Second, cfg.HeartbeatInterval)
    assert.Equal(t, 1, cfg.SubscriberBuffer)
}

func TestSetupEnvOverridesFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "othello.yaml")
    require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT: 9000\n"), 0o600))
    t.Setenv("OTHELLO_SERVER_PORT", "9100")
    t.Setenv("OTHELLO_SUBSCRIBER_BUFFER", "8")

    cfg, err := Setup(path)
    require.NoError(t, err)
    assert.Equal(t, 9100, cfg.ServerPort)
    assert.Equal(t, 8, cfg.SubscriberBuffer)
}

func TestSetupMissingFile(t *testing.T) {
    _, err := Setup(filepath.Join(t.TempDir(), "missing.yaml"))
    require.Error(t, err)
}

func TestSetupRejectsInvalidValues(t *testing.T) {
    t.Setenv("OTHELLO_SERVER_PORT", "70000")
    _, err := Setup("")
    require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
    base := Config{ServerPort: 8080, SubscriberBuffer: 1, HeartbeatInterval: time.Second, ShutdownTimeout: time.Second}
    require.NoError(t, base.Validate())

    bad := base
    bad.SubscriberBuffer = 0
    assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

    bad = base
    bad.HeartbeatInterval = 0
    assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

    bad = base
    bad.ShutdownTimeout = -time.Second
    assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}
