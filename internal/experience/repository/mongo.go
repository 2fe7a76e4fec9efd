package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/workexp/workexp-api/internal/experience"
	"github.com/workexp/workexp-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo wraps col and ensures the indexes used by the list filters.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "startDate", Value: -1}}},
		{Keys: bson.D{{Key: "archived", Value: 1}, {Key: "startDate", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create experience indexes: %w", err)
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Insert(ctx context.Context, e *experience.Experience) error {
	now := store.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, err := m.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert experience: %w", err)
	}
	return nil
}

func (m *MongoRepo) FindByID(ctx context.Context, id string) (*experience.Experience, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	var e experience.Experience
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find experience: %w", err)
	}
	return &e, nil
}

func (m *MongoRepo) Find(ctx context.Context, f experience.Filter) ([]*experience.Experience, int64, error) {
	filter := BuildFilter(f)
	opts := FindOptions(f)

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find experiences: %w", err)
	}
	defer cur.Close(ctx)
	out := []*experience.Experience{}
	for cur.Next(ctx) {
		var e experience.Experience
		if err := cur.Decode(&e); err != nil {
			return nil, 0, fmt.Errorf("decode experience: %w", err)
		}
		out = append(out, &e)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate experiences: %w", err)
	}

	total := int64(len(out))
	if f.Paginated() {
		if total, err = m.col.CountDocuments(ctx, filter); err != nil {
			return nil, 0, fmt.Errorf("count experiences: %w", err)
		}
	}
	return out, total, nil
}

func (m *MongoRepo) Replace(ctx context.Context, e *experience.Experience) error {
	e.UpdatedAt = store.Now()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return fmt.Errorf("replace experience: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete experience: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete experiences: %w", err)
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) SkillCounts(ctx context.Context) ([]experience.SkillCount, error) {
	cur, err := m.col.Aggregate(ctx, SkillsPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate skills: %w", err)
	}
	out := []experience.SkillCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	return out, nil
}

// BuildFilter translates f into a Mongo query. Text filters are
// case-insensitive substring matches; user input is quoted so it is never
// interpreted as a pattern.
func BuildFilter(f experience.Filter) bson.M {
	filter := bson.M{}
	if f.Archived != nil {
		filter["archived"] = *f.Archived
	}
	if f.Company != "" {
		filter["company"] = ciRegex(f.Company)
	}
	if f.Position != "" {
		filter["position"] = ciRegex(f.Position)
	}
	if f.Query != "" {
		rx := ciRegex(f.Query)
		filter["$or"] = bson.A{
			bson.M{"company": rx},
			bson.M{"position": rx},
			bson.M{"description": rx},
			bson.M{"skills": rx},
		}
	}
	return filter
}

// FindOptions applies sort (with _id as tie-breaker) and skip/limit.
func FindOptions(f experience.Filter) *options.FindOptions {
	s := f.Sort
	if s.Field == "" {
		s, _ = experience.ParseSort("")
	}
	opts := options.Find().SetSort(bson.D{
		{Key: s.Field, Value: s.Direction()},
		{Key: "_id", Value: 1},
	})
	if f.Paginated() {
		opts.SetSkip(int64(f.Skip())).SetLimit(int64(f.Limit))
	}
	return opts
}

// SkillsPipeline counts skill occurrences, most used first.
func SkillsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$skills"}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$skills"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func ciRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
