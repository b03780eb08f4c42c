// Package logging provides the log destinations for the SmartBee API: the std
// streams, or a size-rotating file that keeps a bounded set of backups.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// backupStamp sorts lexically in time order and stays unique across
// rotations within the same second.
const backupStamp = "20060102-150405.000"

// RotatingWriter is an io.WriteCloser that rotates log files by size.
type RotatingWriter struct {
	mu         sync.Mutex
	file       *os.File
	filePath   string
	size       int64
	maxBytes   int64
	maxBackups int
	maxAge     time.Duration

	pruning sync.WaitGroup
}

// NewRotatingWriter opens the log file (creating it and its directory if
// needed) and returns a writer that rotates when the file would exceed
// maxSizeMB. Rotated files are named <base>-<timestamp><ext>. At most
// maxBackups rotated files are kept, and files older than maxAgeDays are
// removed.
func NewRotatingWriter(filePath string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		filePath:   filePath,
		maxBytes:   int64(maxSizeMB) * 1024 * 1024,
		maxBackups: maxBackups,
		maxAge:     time.Duration(maxAgeDays) * 24 * time.Hour,
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	if err := rw.openFile(); err != nil {
		return nil, err
	}

	return rw, nil
}

func (rw *RotatingWriter) openFile() error {
	f, err := os.OpenFile(rw.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	rw.file = f
	rw.size = info.Size()
	return nil
}

// Write implements io.Writer. A record that would push the file past the size
// limit goes to a fresh file; a record larger than the limit on its own is
// still written whole.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, os.ErrClosed
	}
	if rw.size > 0 && rw.size+int64(len(p)) > rw.maxBytes {
		if err := rw.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// Reopen closes and reopens the log file at the same path. It lets an
// external rotator move the file away and have the service start a new one.
func (rw *RotatingWriter) Reopen() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.file != nil {
		rw.file.Close()
	}
	return rw.openFile()
}

// Close closes the underlying file and waits for any pending backup pruning.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	var err error
	if rw.file != nil {
		err = rw.file.Close()
		rw.file = nil
	}
	rw.mu.Unlock()
	rw.pruning.Wait()
	return err
}

// naming splits the log path into the pieces backup names are built from.
func (rw *RotatingWriter) naming() (dir, base, ext string) {
	ext = filepath.Ext(rw.filePath)
	base = strings.TrimSuffix(filepath.Base(rw.filePath), ext)
	if ext == "" {
		ext = ".log"
	}
	return filepath.Dir(rw.filePath), base, ext
}

func (rw *RotatingWriter) backupName(now time.Time) string {
	dir, base, ext := rw.naming()
	return filepath.Join(dir, base+"-"+now.Format(backupStamp)+ext)
}

func (rw *RotatingWriter) rotate() error {
	if rw.file != nil {
		rw.file.Close()
	}

	if err := os.Rename(rw.filePath, rw.backupName(time.Now())); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotating log file: %w", err)
	}

	if err := rw.openFile(); err != nil {
		return err
	}

	rw.pruning.Add(1)
	go func() {
		defer rw.pruning.Done()
		rw.prune(time.Now())
	}()

	return nil
}

// backups lists rotated files for this log, oldest first.
func (rw *RotatingWriter) backups() []string {
	dir, base, ext := rw.naming()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	prefix := base + "-"
	current := filepath.Base(rw.filePath)
	var rotated []string
	for _, e := range entries {
		name := e.Name()
		if name != current && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext) {
			rotated = append(rotated, name)
		}
	}
	sort.Strings(rotated)
	return rotated
}

// prune keeps the newest maxBackups backups and drops any older than maxAge.
func (rw *RotatingWriter) prune(now time.Time) {
	dir, _, _ := rw.naming()
	rotated := rw.backups()

	for len(rotated) > rw.maxBackups {
		os.Remove(filepath.Join(dir, rotated[0])) //nolint:errcheck
		rotated = rotated[1:]
	}

	if rw.maxAge <= 0 {
		return
	}
	cutoff := now.Add(-rw.maxAge)
	for _, name := range rotated {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(path) //nolint:errcheck
		}
	}
}
