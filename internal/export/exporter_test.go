package export

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/workexp/workexp-api/internal/experience"
	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/pkg/metrics"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects { return &fakeObjects{objects: map[string][]byte{}} }

func (f *fakeObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) PresignedURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://objects.test/" + key + "?ttl=" + expires.String(), nil
}

type fakeSource struct {
	list []*experience.Experience
	err  error
}

func (s fakeSource) List(context.Context, experience.Filter) ([]*experience.Experience, int64, error) {
	return s.list, int64(len(s.list)), s.err
}

func sample() []*experience.Experience {
	return []*experience.Experience{
		{Company: "Acme", Position: "Engineer", StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Skills: []string{"Go"}},
		{Company: "Globex", Position: "Manager", StartDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Skills: []string{}},
	}
}

func TestExporter_RunWritesSnapshot(t *testing.T) {
	objs := newFakeObjects()
	ex := NewExporter(fakeSource{list: sample()}, objs, NewMemoryRecordStore(), time.Minute)
	before := testutil.ToFloat64(metrics.ExportRuns.WithLabelValues("manual", StatusReady))

	rec, err := ex.Run(context.Background(), TriggerManual)
	require.NoError(t, err)
	require.Equal(t, StatusReady, rec.Status)
	require.Equal(t, 2, rec.Count)
	require.Contains(t, rec.URL, rec.Key)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.ExportRuns.WithLabelValues("manual", StatusReady)))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(objs.objects[rec.Key], &snap))
	require.Equal(t, 2, snap.Count)
	require.Equal(t, "Acme", snap.Experiences[0].Company)

	got, err := ex.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Key, got.Key)
	require.NotEmpty(t, got.URL)
}

func TestExporter_RunRecordsFailure(t *testing.T) {
	objs := newFakeObjects()
	objs.putErr = errors.New("bucket unavailable")
	records := NewMemoryRecordStore()
	ex := NewExporter(fakeSource{list: sample()}, objs, records, time.Minute)

	rec, err := ex.Run(context.Background(), TriggerSchedule)
	require.Error(t, err)
	require.Equal(t, StatusFailed, rec.Status)
	require.Contains(t, rec.Error, "bucket unavailable")

	stored, err := records.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, stored.Status)
	require.Empty(t, stored.URL)
}

func TestExporter_SourceError(t *testing.T) {
	ex := NewExporter(fakeSource{err: errors.New("db down")}, newFakeObjects(), NewMemoryRecordStore(), time.Minute)
	require.Error(t, ex.Job(context.Background()))
}

func TestExporter_GetAndList(t *testing.T) {
	ex := NewExporter(fakeSource{list: sample()}, newFakeObjects(), NewMemoryRecordStore(), time.Minute)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	ex.now = func() time.Time { step++; return base.Add(time.Duration(step) * time.Minute) }

	first, err := ex.Run(context.Background(), TriggerManual)
	require.NoError(t, err)
	second, err := ex.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	list, err := ex.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)

	_, err = ex.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, store.ErrInvalidID)
	_, err = ex.Get(context.Background(), "6f1c2f1e-7a5b-4c1d-9a1e-000000000000")
	require.ErrorIs(t, err, store.ErrNotFound)
}
