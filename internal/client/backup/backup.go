// Package backup moves exported state documents to and from their
// destinations: local files or an S3-compatible bucket.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/melitton/internal/filex"
)

// S3Scheme prefixes bucket keys on the command line: s3://2026/backup.json.
const S3Scheme = "s3://"

// MaxDocumentBytes caps what Download and ReadFile accept. Photos travel
// inline, so backups can be large.
const MaxDocumentBytes = 256 << 20

var (
	ErrNotFound = errors.New("backup not found")
	ErrTooLarge = errors.New("backup too large")
)

// FileName is the default export name for the given day.
func FileName(now time.Time) string {
	return fmt.Sprintf("backup_meligestao_%s.json", now.Format("2006-01-02"))
}

// S3Key reports whether loc names an object in the bucket and returns its key.
func S3Key(loc string) (string, bool) {
	if !strings.HasPrefix(loc, S3Scheme) {
		return "", false
	}
	return strings.TrimPrefix(loc, S3Scheme), true
}

// WriteFile stores a document at path without ever leaving a partial file.
func WriteFile(path string, r io.Reader) error {
	return filex.WriteAtomic(path, r)
}

// ReadFile loads a document from disk.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, MaxDocumentBytes)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
