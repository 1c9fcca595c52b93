package pipeline

import (
	"context"
	"fmt"
	"time"

	"caseburn/internal/caseload"
	"caseburn/internal/model"
	"caseburn/internal/store"
)

// LoadResult holds the caseload read from disk.
type LoadResult struct {
	Store     *caseload.Store
	LastSaved time.Time
	LoadTime  time.Duration
}

// Load opens the database at dbPath and returns its records as a Store.
func Load(ctx context.Context, dbPath string) (*LoadResult, error) {
	start := time.Now()

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	recs, err := db.LoadClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading caseload: %w", err)
	}
	retired, err := db.LoadRetired(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading caseload: %w", err)
	}
	saved, err := db.LastSaved(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading save time: %w", err)
	}

	s, err := caseload.NewStore(recs, caseload.WithRetired(retired))
	if err != nil {
		return nil, fmt.Errorf("loading caseload: %w", err)
	}

	return &LoadResult{
		Store:     s,
		LastSaved: saved,
		LoadTime:  time.Since(start),
	}, nil
}

// Save writes the store's records and retired ids to the database at dbPath.
func Save(ctx context.Context, dbPath string, s *caseload.Store) error {
	return SaveRecords(ctx, dbPath, s.Records(), s.Retired())
}

// SaveRecords writes recs to the database at dbPath, replacing what was there,
// and records retired so those ids stay unused after the next Load.
func SaveRecords(ctx context.Context, dbPath string, recs []model.ClientRecord, retired []string) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.SaveClients(ctx, recs, retired...); err != nil {
		return fmt.Errorf("saving caseload: %w", err)
	}
	return nil
}

// ClientCount returns how many clients are stored at dbPath without
// building a Store.
func ClientCount(ctx context.Context, dbPath string) (int, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	n, err := db.ClientCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting clients: %w", err)
	}
	return n, nil
}
