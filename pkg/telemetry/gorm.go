package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrClosed is returned when recording to a closed recorder.
	ErrClosed = errors.New("recorder closed")
	// ErrUnknownBackend is returned for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown telemetry backend")
)

// MemoryDSN opens a private in-memory sqlite database.
const MemoryDSN = "file::memory:"

// OpenDatabase connects to sqlite or postgres. An empty sqlite dsn opens an
// in-memory database.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = MemoryDSN
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// GormRecorder writes samples to a SQL table through gorm.
type GormRecorder struct {
	db     *gorm.DB
	closed bool
}

// NewGormRecorder migrates the sample table and returns a recorder.
func NewGormRecorder(db *gorm.DB) (*GormRecorder, error) {
	if err := db.AutoMigrate(&Sample{}); err != nil {
		return nil, fmt.Errorf("migrate samples: %w", err)
	}
	return &GormRecorder{db: db}, nil
}

// DB exposes the underlying connection for queries.
func (g *GormRecorder) DB() *gorm.DB { return g.db }

// Record inserts samples in batches.
func (g *GormRecorder) Record(ctx context.Context, samples []Sample) error {
	if g.closed {
		return ErrClosed
	}
	if len(samples) == 0 {
		return nil
	}
	// gorm fills the primary keys in place; keep the caller's slice untouched.
	rows := make([]Sample, len(samples))
	copy(rows, samples)
	if err := g.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("insert samples: %w", err)
	}
	return nil
}

// Flush is a no-op; every Record is committed.
func (g *GormRecorder) Flush(context.Context) error { return nil }

// Ping checks the database connection.
func (g *GormRecorder) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (g *GormRecorder) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Query returns the samples of one agent in tick order.
func (g *GormRecorder) Query(ctx context.Context, agentID uint64) ([]Sample, error) {
	var out []Sample
	err := g.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("tick").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	return out, nil
}
