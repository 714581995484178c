package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// ScanRepository defines scan journal operations
type ScanRepository interface {
	RecordScan(ctx context.Context, ev models.ScanEvent) error
	GetScan(ctx context.Context, id string) (*models.ScanEvent, error)
	ListScans(ctx context.Context, limit int) ([]models.ScanEvent, error)
	ListScansForUID(ctx context.Context, uid string, limit int) ([]models.ScanEvent, error)
	CountByOutcome(ctx context.Context) (map[models.ScanOutcome]int, error)
	CountUniqueUIDs(ctx context.Context) (int, error)
	LastScanAt(ctx context.Context) (time.Time, bool, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Ensure Repository implements all interfaces
var _ ScanRepository = (*Repository)(nil)
