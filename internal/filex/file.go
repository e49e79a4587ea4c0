// Package filex contains small filesystem helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaxAttachmentSize caps uploads read from disk. The backend rejects larger
// files anyway; failing locally gives a faster, clearer error.
const MaxAttachmentSize = 10 << 20

// ReadAttachment loads a file destined for a multipart upload and returns
// its base name and content.
func ReadAttachment(path string) (string, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return "", nil, fmt.Errorf("%s is too large (%d bytes, max %d)", path, info.Size(), MaxAttachmentSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	return filepath.Base(path), content, nil
}
