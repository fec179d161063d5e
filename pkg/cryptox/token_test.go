package cryptox

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		token, err := GenerateToken(size)
		require.NoError(t, err)

		token2, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, token, token2, "tokens should be unique")
	}

	_, err := GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	require.Len(t, FingerprintToken("abc"), 43)
}

func TestGenerateVerificationCode(t *testing.T) {
	for range 20 {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.Equal(t, strings.ToUpper(code), code)

		_, err = hex.DecodeString(code)
		require.NoError(t, err)
	}
}

func TestCodesEqual(t *testing.T) {
	require.True(t, CodesEqual("7F3A9B", "7f3a9b"))
	require.True(t, CodesEqual("7F3A9B", " 7F3A9B "))
	require.False(t, CodesEqual("7F3A9B", "7F3A9C"))
	require.False(t, CodesEqual("7F3A9B", "7F3A9"))
	require.False(t, CodesEqual("7F3A9B", ""))
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	first, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
