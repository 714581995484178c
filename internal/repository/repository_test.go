package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seed(t *testing.T, repo *Repository, events ...models.ScanEvent) {
	t.Helper()
	for _, ev := range events {
		if err := repo.RecordScan(context.Background(), ev); err != nil {
			t.Fatalf("RecordScan(%s): %v", ev.ID, err)
		}
	}
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func event(id, uid string, outcome models.ScanOutcome, offset time.Duration) models.ScanEvent {
	return models.ScanEvent{
		ID:        id,
		UID:       uid,
		Outcome:   outcome,
		Name:      "Ion Pop",
		Role:      "User",
		ScannedAt: base.Add(offset),
	}
}

func TestNew_Ping(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if repo.DB() == nil {
		t.Error("expected DB handle")
	}
}

func TestRecordAndGetScan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seed(t, repo, event("s1", "AABB", models.OutcomeGranted, 0))

	got, err := repo.GetScan(ctx, "s1")
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if got.UID != "AABB" || got.Outcome != models.OutcomeGranted || got.Name != "Ion Pop" {
		t.Errorf("unexpected event %+v", got)
	}
	if !got.ScannedAt.Equal(base) {
		t.Errorf("expected scanned_at %v, got %v", base, got.ScannedAt)
	}
}

func TestGetScan_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetScan(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordScan_DuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, event("s1", "AABB", models.OutcomeGranted, 0))

	err := repo.RecordScan(context.Background(), event("s1", "CCDD", models.OutcomeGranted, time.Second))
	if err == nil {
		t.Error("expected primary key violation")
	}
}

func TestListScans_NewestFirstWithLimit(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo,
		event("s1", "AABB", models.OutcomeGranted, 0),
		event("s2", "CCDD", models.OutcomeRegistrationRequired, time.Minute),
		event("s3", "CCDD", models.OutcomeRegistered, 2*time.Minute),
	)

	scans, err := repo.ListScans(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(scans))
	}
	if scans[0].ID != "s3" || scans[1].ID != "s2" {
		t.Errorf("expected s3, s2; got %s, %s", scans[0].ID, scans[1].ID)
	}
}

func TestListScans_Empty(t *testing.T) {
	repo := newTestRepo(t)

	scans, err := repo.ListScans(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if scans == nil || len(scans) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", scans)
	}
}

func TestListScansForUID(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo,
		event("s1", "AABB", models.OutcomeGranted, 0),
		event("s2", "CCDD", models.OutcomeRegistrationRequired, time.Minute),
		event("s3", "AABB", models.OutcomeGranted, 2*time.Minute),
	)

	scans, err := repo.ListScansForUID(context.Background(), "AABB", 10)
	if err != nil {
		t.Fatalf("ListScansForUID: %v", err)
	}
	if len(scans) != 2 || scans[0].ID != "s3" {
		t.Errorf("unexpected scans %+v", scans)
	}
}

func TestCountByOutcome(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo,
		event("s1", "AABB", models.OutcomeGranted, 0),
		event("s2", "AABB", models.OutcomeGranted, time.Minute),
		event("s3", "FF00", models.OutcomeAdminDenied, 2*time.Minute),
	)

	counts, err := repo.CountByOutcome(context.Background())
	if err != nil {
		t.Fatalf("CountByOutcome: %v", err)
	}
	if counts[models.OutcomeGranted] != 2 || counts[models.OutcomeAdminDenied] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts[models.OutcomeRegistered]; ok {
		t.Error("expected no entry for outcomes never seen")
	}
}

func TestCountUniqueUIDsAndLastScan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.LastScanAt(ctx); err != nil || ok {
		t.Fatalf("expected no last scan on empty journal, got ok=%v err=%v", ok, err)
	}

	seed(t, repo,
		event("s1", "AABB", models.OutcomeGranted, 0),
		event("s2", "AABB", models.OutcomeGranted, time.Minute),
		event("s3", "CCDD", models.OutcomeRegistrationRequired, 2*time.Minute),
	)

	n, err := repo.CountUniqueUIDs(ctx)
	if err != nil || n != 2 {
		t.Errorf("expected 2 unique uids, got %d (err %v)", n, err)
	}

	last, ok, err := repo.LastScanAt(ctx)
	if err != nil || !ok {
		t.Fatalf("LastScanAt: ok=%v err=%v", ok, err)
	}
	if !last.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected last scan %v", last)
	}
}

func TestPruneBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seed(t, repo,
		event("s1", "AABB", models.OutcomeGranted, 0),
		event("s2", "AABB", models.OutcomeGranted, time.Hour),
		event("s3", "CCDD", models.OutcomeGranted, 2*time.Hour),
	)

	n, err := repo.PruneBefore(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows pruned, got %d", n)
	}

	scans, _ := repo.ListScans(ctx, 10)
	if len(scans) != 1 || scans[0].ID != "s3" {
		t.Errorf("unexpected remaining scans %+v", scans)
	}
}

// ==================== Error Path Tests with sqlmock ====================

func TestMigrate_ExecutionFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnError(fmt.Errorf("migration failed"))

	repo := &Repository{db: db}
	err = repo.migrate()

	if err == nil || err.Error() != "migration failed" {
		t.Errorf("expected 'migration failed', got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRecordScan_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO scans").WillReturnError(fmt.Errorf("database locked"))

	repo := &Repository{db: db}
	if err := repo.RecordScan(context.Background(), event("s1", "AABB", models.OutcomeGranted, 0)); err == nil {
		t.Error("expected RecordScan to fail")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListScans_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "uid", "outcome", "name", "role", "scanned_at"}).
		AddRow("s1", "AABB", "granted", "Ion Pop", "User", "not-a-time")
	mock.ExpectQuery("SELECT (.+) FROM scans").WillReturnRows(rows)

	repo := &Repository{db: db}
	if _, err := repo.ListScans(context.Background(), 10); err == nil {
		t.Error("expected scan error for a malformed timestamp")
	}
}

func TestCountByOutcome_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT outcome").WillReturnError(fmt.Errorf("disk I/O error"))

	repo := &Repository{db: db}
	if _, err := repo.CountByOutcome(context.Background()); err == nil {
		t.Error("expected query error")
	}
}

func TestLastScanAt_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT scanned_at").WillReturnError(fmt.Errorf("disk I/O error"))

	repo := &Repository{db: db}
	if _, _, err := repo.LastScanAt(context.Background()); err == nil {
		t.Error("expected query error")
	}
}

func TestClose_NilDB(t *testing.T) {
	repo := &Repository{}
	if err := repo.Close(); err != nil {
		t.Errorf("expected nil error closing an empty repository, got %v", err)
	}
}
