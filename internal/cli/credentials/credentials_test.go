package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/cli/config"
)

func setup(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
}

func TestLoadMissing(t *testing.T) {
	setup(t)

	creds, err := Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
	assert.NoError(t, Delete())
}

func TestSaveLoadDelete(t *testing.T) {
	setup(t)

	in := &Credentials{Token: "tok", ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second), Username: "dana"}
	require.NoError(t, Save(in))

	info, err := os.Stat(config.GetCredentialsPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, err := Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "dana", out.Username)
	assert.True(t, out.IsValid())

	require.NoError(t, Delete())
	out, err = Load()
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestExpiry(t *testing.T) {
	expired := &Credentials{Token: "tok", ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, expired.IsExpired())
	assert.False(t, expired.IsValid())

	assert.False(t, (&Credentials{ExpiresAt: time.Now().Add(time.Hour)}).IsValid())

	var missing *Credentials
	assert.False(t, missing.IsValid())
}
