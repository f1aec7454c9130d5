package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ScratchPrefix disambiguates scratch resources from user files when they
// are created next to a target archive.
const ScratchPrefix = "bfxtmp"

// ScratchDir is a temporary directory created in the same parent directory
// as a target path, so a later rename into that target stays on one volume.
// It is owned by exactly one pipeline run and removed exactly once.
type ScratchDir struct {
	path string
	once sync.Once
}

// NewScratchDir creates a scratch directory next to nearPath.
func NewScratchDir(nearPath string) (*ScratchDir, error) {
	dir, base := filepath.Split(nearPath)
	if dir == "" {
		dir = "."
	}
	path, err := os.MkdirTemp(dir, ScratchPrefix+base+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &ScratchDir{path: path}, nil
}

// Path returns the scratch directory's location.
func (s *ScratchDir) Path() string {
	return s.path
}

// Remove deletes the directory and everything under it. Safe to call more
// than once; only the first call does anything.
func (s *ScratchDir) Remove() error {
	var err error
	s.once.Do(func() {
		err = os.RemoveAll(s.path)
	})
	return err
}

// ScratchFile is a temporary file colocated with a target path, used as the
// staging location for replace-after-build operations.
type ScratchFile struct {
	path string
	once sync.Once
}

// NewScratchFile creates an empty scratch file next to nearPath.
func NewScratchFile(nearPath string) (*ScratchFile, error) {
	dir, base := filepath.Split(nearPath)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, ScratchPrefix+base+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close scratch file: %w", err)
	}
	return &ScratchFile{path: path}, nil
}

// Path returns the scratch file's location.
func (s *ScratchFile) Path() string {
	return s.path
}

// Remove deletes the file if it still exists. Safe to call more than once,
// and after the file has been renamed away.
func (s *ScratchFile) Remove() error {
	var err error
	s.once.Do(func() {
		rmErr := os.Remove(s.path)
		if rmErr != nil && !os.IsNotExist(rmErr) {
			err = rmErr
		}
	})
	return err
}
