package services

import (
	"context"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// ScanServicer defines the interface for scan journal operations
type ScanServicer interface {
	RecordScan(ctx context.Context, ev models.ScanEvent) error
	ListRecent(ctx context.Context, limit int) ([]models.ScanEvent, error)
	History(ctx context.Context, uid string, limit int) ([]models.ScanEvent, error)
	Stats(ctx context.Context) (*ScanStats, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// DisplayServicer defines the interface for kiosk display helpers
type DisplayServicer interface {
	URL() string
	QRImage() ([]byte, error)
}

// Ensure implementations satisfy interfaces
var (
	_ ScanServicer    = (*ScanService)(nil)
	_ DisplayServicer = (*DisplayService)(nil)
)
