package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workexp/workexp-api/internal/experience"
	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/pkg/logger"
	"github.com/workexp/workexp-api/pkg/metrics"
)

const (
	contentType = "application/json"
	listLimit   = 50
)

// ObjectStore is the subset of object storage the exporter needs.
// *storage.MinIOStorage satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Source lists the experiences to snapshot.
type Source interface {
	List(ctx context.Context, f experience.Filter) ([]*experience.Experience, int64, error)
}

// Snapshot is the object body written for each run.
type Snapshot struct {
	ExportedAt  time.Time                `json:"exportedAt"`
	Count       int                      `json:"count"`
	Experiences []*experience.Experience `json:"experiences"`
}

// Exporter writes snapshots and keeps a record of every run.
type Exporter struct {
	src     Source
	objects ObjectStore
	records RecordStore
	urlTTL  time.Duration
	now     func() time.Time
}

func NewExporter(src Source, objects ObjectStore, records RecordStore, urlTTL time.Duration) *Exporter {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &Exporter{src: src, objects: objects, records: records, urlTTL: urlTTL, now: time.Now}
}

// Run snapshots every experience. A failed upload is still recorded with
// status failed and the error is returned.
func (e *Exporter) Run(ctx context.Context, trigger Trigger) (*Record, error) {
	now := e.now().UTC()
	id := uuid.NewString()
	rec := &Record{
		ID:        id,
		Key:       fmt.Sprintf("exports/%s-%s.json", now.Format("20060102T150405Z"), id),
		Trigger:   trigger,
		CreatedAt: now,
	}

	err := e.write(ctx, rec, now)
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = StatusReady
	}
	metrics.ExportRuns.WithLabelValues(string(trigger), rec.Status).Inc()

	if serr := e.records.Save(ctx, rec); serr != nil {
		return nil, errors.Join(err, serr)
	}
	if err != nil {
		logger.Errorf("export %s (%s) failed: %v", rec.ID, trigger, err)
		return rec, err
	}
	logger.Infof("export %s (%s) wrote %d experiences to %s", rec.ID, trigger, rec.Count, rec.Key)
	return rec, e.sign(ctx, rec)
}

func (e *Exporter) write(ctx context.Context, rec *Record, now time.Time) error {
	list, _, err := e.src.List(ctx, experience.Filter{})
	if err != nil {
		return err
	}
	data, err := json.Marshal(Snapshot{ExportedAt: now, Count: len(list), Experiences: list})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := e.objects.Put(ctx, rec.Key, data, contentType); err != nil {
		return err
	}
	rec.Count = len(list)
	return nil
}

// Get returns a record with a fresh presigned URL when the object exists.
func (e *Exporter) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, store.ErrInvalidID
	}
	rec, err := e.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, e.sign(ctx, rec)
}

// List returns the most recent records, newest first.
func (e *Exporter) List(ctx context.Context) ([]*Record, error) {
	list, err := e.records.List(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return list, nil
}

func (e *Exporter) sign(ctx context.Context, rec *Record) error {
	if rec.Status != StatusReady {
		return nil
	}
	u, err := e.objects.PresignedURL(ctx, rec.Key, e.urlTTL)
	if err != nil {
		return err
	}
	rec.URL = u
	return nil
}

// Job adapts Run for the scheduler.
func (e *Exporter) Job(ctx context.Context) error {
	_, err := e.Run(ctx, TriggerSchedule)
	return err
}
