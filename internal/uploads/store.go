// Package uploads stores side-channel file uploads on local disk and maps
// them to the public /files URLs the chat announcements point at.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes r to disk under a millisecond-timestamp-prefixed name so
// repeated uploads of the same file never collide. Returns the stored
// file name (not a path).
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitize(originalName))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}

// PublicURL maps a stored file name to its client-reachable path.
func PublicURL(stored string) string {
	return "/files/" + stored
}

// sanitize strips any directory components a hostile client may have
// smuggled into the multipart file name.
func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "file"
	}
	return name
}
