package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	key := GenerateAPIKey()
	prefix, err := KeyPrefix(key)
	require.NoError(t, err)
	require.Len(t, prefix, PrefixLength)
	require.True(t, strings.HasPrefix(key, prefix+"."))
	require.NotEqual(t, key, GenerateAPIKey())

	hash, err := HashAPIKey(key)
	require.NoError(t, err)
	require.True(t, CheckAPIKey(hash, key))
	require.False(t, CheckAPIKey(hash, GenerateAPIKey()))
}

func TestKeyPrefix(t *testing.T) {
	for _, key := range []string{"", "nodot", "short.secret", "toolongprefix.secret"} {
		_, err := KeyPrefix(key)
		require.Error(t, err, key)
	}
}
