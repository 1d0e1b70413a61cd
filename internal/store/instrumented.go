package store

import (
	"context"
	"time"

	"github.com/localnerve/carscan-store/internal/metrics"
	"github.com/localnerve/carscan-store/internal/models"
)

// Instrument reports every call on repo to rec, labelled with source
func Instrument(repo Repository, source string, rec metrics.Recorder) Repository {
	if rec == nil {
		return repo
	}
	return &instrumented{next: repo, source: source, rec: rec}
}

type instrumented struct {
	next   Repository
	source string
	rec    metrics.Recorder
}

func (i *instrumented) observe(op string, began time.Time, err error) {
	i.rec.ObserveOperation(i.source, op, began, err)
}

func (i *instrumented) Initialize(ctx context.Context) error {
	began := time.Now()
	err := i.next.Initialize(ctx)
	i.observe("initialize", began, err)
	return err
}

func (i *instrumented) SaveScan(ctx context.Context, scan models.Scan) (models.Scan, error) {
	began := time.Now()
	saved, err := i.next.SaveScan(ctx, scan)
	i.observe("saveScan", began, err)
	return saved, err
}

func (i *instrumented) GetRecentScans(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	began := time.Now()
	scans, err := i.next.GetRecentScans(ctx, limit, offset)
	i.observe("getRecentScans", began, err)
	return scans, err
}

func (i *instrumented) GetSavedCollection(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	began := time.Now()
	scans, err := i.next.GetSavedCollection(ctx, limit, offset)
	i.observe("getSavedCollection", began, err)
	return scans, err
}

func (i *instrumented) ToggleSavedScan(ctx context.Context, id string) (bool, error) {
	began := time.Now()
	changed, err := i.next.ToggleSavedScan(ctx, id)
	i.observe("toggleSavedScan", began, err)
	return changed, err
}

func (i *instrumented) SearchScans(ctx context.Context, query string) ([]models.Scan, error) {
	began := time.Now()
	scans, err := i.next.SearchScans(ctx, query)
	i.observe("searchScans", began, err)
	return scans, err
}

func (i *instrumented) GetCollections(ctx context.Context) ([]models.Collection, error) {
	began := time.Now()
	collections, err := i.next.GetCollections(ctx)
	i.observe("getCollections", began, err)
	return collections, err
}

func (i *instrumented) CreateCollection(ctx context.Context, name, icon string) (string, error) {
	began := time.Now()
	id, err := i.next.CreateCollection(ctx, name, icon)
	i.observe("createCollection", began, err)
	return id, err
}

func (i *instrumented) AddToCollection(ctx context.Context, collectionID string, car models.Scan) error {
	began := time.Now()
	err := i.next.AddToCollection(ctx, collectionID, car)
	i.observe("addToCollection", began, err)
	return err
}

func (i *instrumented) RemoveFromCollection(ctx context.Context, collectionID, carID string) error {
	began := time.Now()
	err := i.next.RemoveFromCollection(ctx, collectionID, carID)
	i.observe("removeFromCollection", began, err)
	return err
}

func (i *instrumented) DeleteCollection(ctx context.Context, collectionID string) error {
	began := time.Now()
	err := i.next.DeleteCollection(ctx, collectionID)
	i.observe("deleteCollection", began, err)
	return err
}

func (i *instrumented) GetStats(ctx context.Context) (models.Stats, error) {
	began := time.Now()
	stats, err := i.next.GetStats(ctx)
	i.observe("getStats", began, err)
	return stats, err
}

func (i *instrumented) ClearAllData(ctx context.Context) error {
	began := time.Now()
	err := i.next.ClearAllData(ctx)
	i.observe("clearAllData", began, err)
	return err
}
