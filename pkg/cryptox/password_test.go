package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Point the pepper at a throwaway location so tests never touch a real one.
	dir, err := os.MkdirTemp("", "cryptox-pepper")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashAndMatchRoundTrip(t *testing.T) {
	hash, err := HashPassword("longenough1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.True(t, MatchesPassword("longenough1", hash))
	require.False(t, MatchesPassword("wrong-password", hash))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("longenough1")
	require.NoError(t, err)
	second, err := HashPassword("longenough1")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHashRejectsShortPasswords(t *testing.T) {
	_, err := HashPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestMatchesRejectsMalformedDigests(t *testing.T) {
	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=19456,t=2,p=1$salt",           // too few parts
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",    // wrong algorithm
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA", // wrong version
	} {
		require.False(t, MatchesPassword("longenough1", bad), "digest %q should not match", bad)
	}
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43) // 32 bytes base64url, no padding

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
}
