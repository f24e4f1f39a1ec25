package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRigFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"avatar.rig.yml",
		"notes.txt",
		"exports/b.rig.json",
		"exports/a.rig.yml",
		".cache/stale.rig.yml",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("armature: A\n"), 0644))
	}

	files, err := FindRigFiles(dir, []string{"*.rig.yml", "*.rig.json"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "avatar.rig.yml"),
		filepath.Join(dir, "exports", "a.rig.yml"),
		filepath.Join(dir, "exports", "b.rig.json"),
	}, files)
}

func TestFindRigFiles_MissingDir(t *testing.T) {
	_, err := FindRigFiles(filepath.Join(t.TempDir(), "missing"), []string{"*.rig.yml"})
	assert.Error(t, err)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("avatar.rig.yml", []string{"*.rig.json", "*.rig.yml"}))
	assert.False(t, MatchesAny("avatar.yml", []string{"*.rig.yml"}))
	assert.False(t, MatchesAny("avatar.rig.yml", nil))
}
