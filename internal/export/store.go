package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/workexp/workexp-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordStore persists export records.
type RecordStore interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
}

// MongoRecordStore keeps records in the export_runs collection.
type MongoRecordStore struct {
	col *mongo.Collection
}

func NewMongoRecordStore(ctx context.Context, col *mongo.Collection) (*MongoRecordStore, error) {
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		return nil, fmt.Errorf("create export index: %w", err)
	}
	return &MongoRecordStore{col: col}, nil
}

// Save upserts the record by id.
func (s *MongoRecordStore) Save(ctx context.Context, r *Record) error {
	opts := options.Update().SetUpsert(true)
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": r.ID}, bson.M{"$set": r}, opts); err != nil {
		return fmt.Errorf("save export record: %w", err)
	}
	return nil
}

func (s *MongoRecordStore) Get(ctx context.Context, id string) (*Record, error) {
	var r Record
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// List returns the newest records first.
func (s *MongoRecordStore) List(ctx context.Context, limit int) ([]*Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MemoryRecordStore is used when MongoDB is unavailable and in tests.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]Record)}
}

func (s *MemoryRecordStore) Save(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	c.URL = ""
	s.records[r.ID] = c
	return nil
}

func (s *MemoryRecordStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryRecordStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		r := r
		out = append(out, &r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
