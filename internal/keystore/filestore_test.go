package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/didkit/pkg/cryptography"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "keys.yaml")

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	return fs, path
}

func TestAddAndFind(t *testing.T) {
	fs, _ := tempStore(t)

	kp, err := cryptography.Generate(cryptography.Ed25519)
	require.NoError(t, err)

	require.NoError(t, fs.Add(kp))

	fp, err := kp.Fingerprint()
	require.NoError(t, err)

	got, err := fs.Find(fp)
	require.NoError(t, err)
	assert.True(t, kp.Equal(got))
}

func TestAddIdempotent(t *testing.T) {
	fs, _ := tempStore(t)

	kp, err := cryptography.Generate(cryptography.Ed25519)
	require.NoError(t, err)

	require.NoError(t, fs.Add(kp))
	require.NoError(t, fs.Add(kp))

	keys, err := fs.List()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestAddRejectsPublicOnly(t *testing.T) {
	fs, _ := tempStore(t)

	kp, err := cryptography.Generate(cryptography.Ed25519)
	require.NoError(t, err)

	token, err := kp.Multibase()
	require.NoError(t, err)

	pubOnly, err := cryptography.FromMultibase(token)
	require.NoError(t, err)

	assert.Error(t, fs.Add(pubOnly))
}

func TestPersistsAcrossReopen(t *testing.T) {
	fs, path := tempStore(t)

	kp, err := cryptography.Generate(cryptography.X25519)
	require.NoError(t, err)

	require.NoError(t, fs.Add(kp))

	again, err := NewFileStore(path)
	require.NoError(t, err)

	fp, err := kp.Fingerprint()
	require.NoError(t, err)

	got, err := again.Find(fp)
	require.NoError(t, err)
	assert.True(t, kp.Equal(got))
	assert.True(t, got.HasPrivate())
}

func TestFindMissing(t *testing.T) {
	fs, _ := tempStore(t)

	_, err := fs.Find("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyFilePermissions(t *testing.T) {
	fs, path := tempStore(t)

	kp, err := cryptography.Generate(cryptography.Ed25519)
	require.NoError(t, err)
	require.NoError(t, fs.Add(kp))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestZeroingReturnedKeyLeavesStoreIntact(t *testing.T) {
	fs, _ := tempStore(t)

	kp, err := cryptography.Generate(cryptography.Ed25519)
	require.NoError(t, err)

	require.NoError(t, fs.Add(kp))

	fp, err := kp.Fingerprint()
	require.NoError(t, err)

	// the caller's pair and a found copy both get wiped
	kp.Zero()

	got, err := fs.Find(fp)
	require.NoError(t, err)
	got.Zero()

	again, err := fs.Find(fp)
	require.NoError(t, err)
	assert.True(t, again.HasPrivate())
}
