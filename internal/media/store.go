package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Allowed upload extensions, lowercase with dot.
var (
	audioExtensions = map[string]bool{
		".mp3": true, ".wav": true, ".ogg": true,
		".flac": true, ".m4a": true, ".aac": true,
	}
	imageExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	}
)

// IsAudioFile reports whether the filename has an accepted audio extension.
func IsAudioFile(filename string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsImageFile reports whether the filename has an accepted image extension.
func IsImageFile(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store manages per-project media files under the data directory.
type Store struct {
	dataDir string
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// ProjectDir returns the directory holding a project's files.
func (s *Store) ProjectDir(projectID string) string {
	return filepath.Join(s.dataDir, "projects", projectID)
}

// SaveAudio stores an uploaded audio file in the project directory and
// returns the destination path.
func (s *Store) SaveAudio(projectID, filename string, r io.Reader) (string, error) {
	if !IsAudioFile(filename) {
		return "", fmt.Errorf("unsupported audio format: %s", filename)
	}
	return s.save(projectID, filename, r)
}

// SaveImage stores an uploaded background image in the project directory
// and returns the destination path.
func (s *Store) SaveImage(projectID, filename string, r io.Reader) (string, error) {
	if !IsImageFile(filename) {
		return "", fmt.Errorf("unsupported image format: %s", filename)
	}
	return s.save(projectID, filename, r)
}

func (s *Store) save(projectID, filename string, r io.Reader) (string, error) {
	dir := s.ProjectDir(projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	// browsers may send a full client path in the multipart filename
	destPath := filepath.Join(dir, filepath.Base(filename))
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	_, err = io.Copy(dest, r)
	dest.Close()
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return destPath, nil
}

// Remove deletes a project's directory and everything in it.
func (s *Store) Remove(projectID string) error {
	return os.RemoveAll(s.ProjectDir(projectID))
}

// CleanupOlderThan removes project directories whose contents have not
// been touched within maxAge and returns how many were removed. Orphan
// directories left behind by interrupted deletes are swept up here too.
func (s *Store) CleanupOlderThan(maxAge time.Duration) (int, error) {
	root := filepath.Join(s.dataDir, "projects")
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read media directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if newestModTime(dir).After(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		removed++
	}
	return removed, nil
}

// newestModTime returns the most recent modification time found under dir,
// so an old project that just received a new upload is not swept.
func newestModTime(dir string) time.Time {
	var newest time.Time
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}
