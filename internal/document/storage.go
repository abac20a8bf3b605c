package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage writes uploaded leases under a per-user directory. The directory
// name is a hash of the email so raw addresses never appear on disk.
type Storage struct {
	baseDir string
}

func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir}
}

func userDir(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:8])
}

// Save streams src to disk and returns the stored filename relative to the
// base directory. The caller has already validated extension and size.
func (s *Storage) Save(email, ext string, src io.Reader) (string, int64, error) {
	dir := filepath.Join(s.baseDir, userDir(email))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}

	return filepath.Join(userDir(email), name), written, nil
}

// Path resolves a stored filename back to an absolute path, rejecting
// anything that escapes the base directory.
func (s *Storage) Path(storedFilename string) (string, error) {
	cleaned := filepath.Clean(storedFilename)
	if cleaned == "" || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid stored filename: %q", storedFilename)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func (s *Storage) Remove(storedFilename string) error {
	path, err := s.Path(storedFilename)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
