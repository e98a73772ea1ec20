package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "")

	cfg := LoadConfig()

	require.Equal(t, "floodwatch-auth", cfg.Issuer)
	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 5*time.Second, cfg.StoreTimeout)
	require.Empty(t, cfg.SessionSecret)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_ISSUER", "other-issuer")
	t.Setenv("AUTH_SESSION_SECRET", "s3cret")
	t.Setenv("AUTH_SESSION_TTL", "12h")
	t.Setenv("PORT", "9999")
	t.Setenv("GOOGLE_CLIENT_ID", "gid")

	cfg := LoadConfig()

	require.Equal(t, "other-issuer", cfg.Issuer)
	require.Equal(t, "s3cret", cfg.SessionSecret)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, 9999, cfg.Port)
	require.Equal(t, "gid", cfg.GoogleClientID)
}

func TestLoadConfigIgnoresGarbageValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("AUTH_SESSION_TTL", "soon")

	cfg := LoadConfig()

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
}
