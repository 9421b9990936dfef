package backup

import (
	"context"
	"time"
)

// Config controls periodic copies of the snapshot store. It is read from
// the backup section of the configuration file.
type Config struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	LocalDir string        `mapstructure:"dir"`
	KeepLast int           `mapstructure:"keep-last"`
}

// Store writes a consistent copy of itself to a file.
type Store interface {
	BackupTo(ctx context.Context, dstPath string) error
}
