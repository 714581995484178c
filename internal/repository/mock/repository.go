package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ListScansError = errors.New("database error")
//	svc := services.NewScanService(log, mockRepo)
type Repository struct {
	repository.ScanRepository

	RecordScanError      error
	GetScanError         error
	ListScansError       error
	CountByOutcomeError  error
	CountUniqueUIDsError error
	LastScanAtError      error
	PruneBeforeError     error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.ScanRepository) *Repository {
	return &Repository{ScanRepository: real}
}

func (m *Repository) RecordScan(ctx context.Context, ev models.ScanEvent) error {
	if m.RecordScanError != nil {
		return m.RecordScanError
	}
	return m.ScanRepository.RecordScan(ctx, ev)
}

func (m *Repository) GetScan(ctx context.Context, id string) (*models.ScanEvent, error) {
	if m.GetScanError != nil {
		return nil, m.GetScanError
	}
	return m.ScanRepository.GetScan(ctx, id)
}

func (m *Repository) ListScans(ctx context.Context, limit int) ([]models.ScanEvent, error) {
	if m.ListScansError != nil {
		return nil, m.ListScansError
	}
	return m.ScanRepository.ListScans(ctx, limit)
}

func (m *Repository) ListScansForUID(ctx context.Context, uid string, limit int) ([]models.ScanEvent, error) {
	if m.ListScansError != nil {
		return nil, m.ListScansError
	}
	return m.ScanRepository.ListScansForUID(ctx, uid, limit)
}

func (m *Repository) CountByOutcome(ctx context.Context) (map[models.ScanOutcome]int, error) {
	if m.CountByOutcomeError != nil {
		return nil, m.CountByOutcomeError
	}
	return m.ScanRepository.CountByOutcome(ctx)
}

func (m *Repository) CountUniqueUIDs(ctx context.Context) (int, error) {
	if m.CountUniqueUIDsError != nil {
		return 0, m.CountUniqueUIDsError
	}
	return m.ScanRepository.CountUniqueUIDs(ctx)
}

func (m *Repository) LastScanAt(ctx context.Context) (time.Time, bool, error) {
	if m.LastScanAtError != nil {
		return time.Time{}, false, m.LastScanAtError
	}
	return m.ScanRepository.LastScanAt(ctx)
}

func (m *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PruneBeforeError != nil {
		return 0, m.PruneBeforeError
	}
	return m.ScanRepository.PruneBefore(ctx, cutoff)
}
