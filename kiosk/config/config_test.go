package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStreamURL, cfg.StreamURL)
	assert.Equal(t, DefaultApprovalURL, cfg.ApprovalURL)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Equal(t, DefaultReportHold, cfg.ReportHold)
	assert.Equal(t, DefaultResultHold, cfg.ResultHold)
	assert.NotEmpty(t, cfg.SessionID)
}

func TestSessionIDUniquePerLoad(t *testing.T) {
	first, err := Load(nil)
	require.NoError(t, err)
	second, err := Load(nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load([]string{
		"--stream-url", "wss://kiosk.local:8443/ws",
		"--threshold", "55",
		"--report-hold", "1500ms",
	})
	require.NoError(t, err)

	assert.Equal(t, "wss://kiosk.local:8443/ws", cfg.StreamURL)
	assert.Equal(t, 55.0, cfg.Threshold)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReportHold)
	assert.Equal(t, DefaultResultHold, cfg.ResultHold)
}

func TestFileOverridesDefaultsButNotFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiosk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"stream_url: ws://filehost:9000/ws\nthreshold: 80\nresult_hold: 2s\n",
	), 0o644))

	cfg, err := Load([]string{"--config", path, "--threshold", "60"})
	require.NoError(t, err)

	assert.Equal(t, "ws://filehost:9000/ws", cfg.StreamURL, "file value applies")
	assert.Equal(t, 60.0, cfg.Threshold, "explicit flag beats the file")
	assert.Equal(t, 2*time.Second, cfg.ResultHold)
}

func TestEnvironmentFallback(t *testing.T) {
	t.Setenv("KIOSK_STREAM_URL", "ws://envhost:7000/ws")
	t.Setenv("KIOSK_APPROVAL_URL", "http://envhost:7000/approve")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://envhost:7000/ws", cfg.StreamURL)
	assert.Equal(t, "http://envhost:7000/approve", cfg.ApprovalURL)

	// A flag still wins over the environment.
	cfg, err = Load([]string{"--stream-url", "ws://flaghost/ws"})
	require.NoError(t, err)
	assert.Equal(t, "ws://flaghost/ws", cfg.StreamURL)
}

func TestStreamEndpointCarriesSession(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultStreamURL+"?session="+cfg.SessionID, cfg.StreamEndpoint())

	cfg.StreamURL = "wss://kiosk.local:8443/ws?camera=2"
	endpoint := cfg.StreamEndpoint()
	assert.Contains(t, endpoint, "camera=2")
	assert.Contains(t, endpoint, "session="+cfg.SessionID)
}

func TestValidation(t *testing.T) {
	_, err := Load([]string{"--threshold", "250"})
	assert.Error(t, err)

	_, err = Load([]string{"--report-hold", "0s"})
	assert.Error(t, err)

	_, err = Load([]string{"--stream-url", ""})
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load([]string{"--config", "/nonexistent/kiosk.yaml"})
	assert.Error(t, err)
}
