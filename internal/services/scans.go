package services

import (
	"context"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/logger"
	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/repository"
)

// Page sizes for journal listings
const (
	DefaultScanLimit = 50
	MaxScanLimit     = 500
)

// ScanStats summarises the scan journal
type ScanStats struct {
	Total        int                        `json:"total"`
	ByOutcome    map[models.ScanOutcome]int `json:"by_outcome"`
	UniqueBadges int                        `json:"unique_badges"`
	LastScanAt   *time.Time                 `json:"last_scan_at,omitempty"`
}

// ScanService handles scan journal business logic
type ScanService struct {
	log  logger.Logger
	repo repository.ScanRepository
	now  func() time.Time
}

// NewScanService creates a new ScanService
func NewScanService(log logger.Logger, repo repository.ScanRepository) *ScanService {
	return &ScanService{log: log, repo: repo, now: time.Now}
}

// RecordScan stores a scan; the kiosk controller calls this for every interpreted badge
func (s *ScanService) RecordScan(ctx context.Context, ev models.ScanEvent) error {
	ev.UID = models.NormalizeUID(ev.UID)
	if ev.ScannedAt.IsZero() {
		ev.ScannedAt = s.now()
	}
	if err := s.repo.RecordScan(ctx, ev); err != nil {
		return err
	}
	s.log.Debug("Scan recorded", "id", ev.ID, "uid", ev.UID, "outcome", ev.Outcome)
	return nil
}

// ListRecent returns the newest scans. A zero limit means the default page size.
func (s *ScanService) ListRecent(ctx context.Context, limit int) ([]models.ScanEvent, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.ListScans(ctx, limit)
}

// History returns the newest scans of one badge
func (s *ScanService) History(ctx context.Context, uid string, limit int) ([]models.ScanEvent, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.ListScansForUID(ctx, models.NormalizeUID(uid), limit)
}

// Stats summarises the journal
func (s *ScanService) Stats(ctx context.Context) (*ScanStats, error) {
	counts, err := s.repo.CountByOutcome(ctx)
	if err != nil {
		return nil, err
	}
	unique, err := s.repo.CountUniqueUIDs(ctx)
	if err != nil {
		return nil, err
	}
	last, ok, err := s.repo.LastScanAt(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ScanStats{ByOutcome: counts, UniqueBadges: unique}
	for _, n := range counts {
		stats.Total += n
	}
	if ok {
		stats.LastScanAt = &last
	}
	return stats, nil
}

// Prune deletes scans older than retention
func (s *ScanService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention < time.Hour {
		return 0, ErrInvalidRetention
	}
	n, err := s.repo.PruneBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Pruned scan journal", "removed", n, "retention", retention)
	}
	return n, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultScanLimit, nil
	}
	if limit < 0 || limit > MaxScanLimit {
		return 0, &InvalidLimitError{Limit: limit}
	}
	return limit, nil
}
