package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAttachment_ReturnsBaseNameAndContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o600))

	name, content, err := ReadAttachment(path)
	require.NoError(t, err)
	assert.Equal(t, "avatar.png", name)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, content)
}

func TestReadAttachment_MissingFile(t *testing.T) {
	_, _, err := ReadAttachment(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestReadAttachment_RejectsDirectory(t *testing.T) {
	_, _, err := ReadAttachment(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}
