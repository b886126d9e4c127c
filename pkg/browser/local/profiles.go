package local

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/onkernel/profiles-demo/pkg/browser"
)

// profileStore keeps profiles as browser user-data directories on disk,
// one per profile name, with a small metadata file alongside.
type profileStore struct {
	root string
}

const metadataFile = "profile.json"

type profileMetadata struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newProfileStore(root string) (*profileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile store: %w", err)
	}
	return &profileStore{root: root}, nil
}

func (s *profileStore) dir(name string) string {
	return filepath.Join(s.root, name)
}

// Create makes a new empty profile directory. An existing profile of the
// same name is a conflict.
func (s *profileStore) Create(name string) (*browser.Profile, error) {
	if name == "" {
		return nil, fmt.Errorf("profile name is required")
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid profile name %q", name)
	}

	dir := s.dir(name)
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, &browser.ConflictError{Name: name}
		}
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	meta := profileMetadata{Name: name, CreatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write profile metadata: %w", err)
	}

	return &browser.Profile{
		Name:      name,
		CreatedAt: meta.CreatedAt.Format(time.RFC3339),
	}, nil
}

// Exists reports whether the named profile has a directory.
func (s *profileStore) Exists(name string) bool {
	info, err := os.Stat(s.dir(name))
	return err == nil && info.IsDir()
}

// CopyTo clones the profile's user-data directory into dst, used for
// sessions that must not write back to the profile.
func (s *profileStore) CopyTo(name, dst string) error {
	if !s.Exists(name) {
		return fmt.Errorf("profile %q not found", name)
	}
	return copyDir(s.dir(name), dst)
}

// copyDir recursively copies a directory tree. Symlinks are skipped;
// browser user-data dirs do not rely on them.
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return os.MkdirAll(target, info.Mode())
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode())
		default:
			return nil
		}
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
