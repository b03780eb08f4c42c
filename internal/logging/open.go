package logging

import (
	"io"
	"os"

	"github.com/dskow/smartbee-api/internal/config"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Open returns the log destination named by cfg.Output. The std streams are
// returned with a no-op Close; anything else is treated as a file path and
// gets a RotatingWriter.
func Open(cfg config.LoggingConfig) (io.WriteCloser, error) {
	switch cfg.Output {
	case "", "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	}
	return NewRotatingWriter(cfg.Output, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
}
