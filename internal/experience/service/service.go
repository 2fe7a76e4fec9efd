package service

import (
	"context"
	"fmt"

	"github.com/workexp/workexp-api/internal/experience"
	"github.com/workexp/workexp-api/internal/experience/repository"
	"github.com/workexp/workexp-api/pkg/metrics"
	"github.com/workexp/workexp-api/pkg/validation"
	"go.mongodb.org/mongo-driver/mongo"
)

const resource = "experience"

// Service defines the experience operations used by the handler layer.
type Service interface {
	List(ctx context.Context, f experience.Filter) ([]*experience.Experience, int64, error)
	Get(ctx context.Context, id string) (*experience.Experience, error)
	Create(ctx context.Context, in experience.Input) (*experience.Experience, error)
	Update(ctx context.Context, id string, in experience.Input) (*experience.Experience, error)
	Archive(ctx context.Context, id string) (*experience.Experience, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	Skills(ctx context.Context) ([]experience.SkillCount, error)
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(ctx context.Context, col *mongo.Collection) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo), nil
}

// New returns a Service over any repository implementation.
func New(repo repository.Repository) Service {
	return &service{repo: repo, v: experience.NewValidator()}
}

type service struct {
	repo repository.Repository
	v    *validation.Validator
}

func (s *service) List(ctx context.Context, f experience.Filter) (list []*experience.Experience, total int64, err error) {
	defer func() { metrics.Observe(resource, "list", err) }()
	list, total, err = s.repo.Find(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list experiences: %w", err)
	}
	return list, total, nil
}

func (s *service) Get(ctx context.Context, id string) (e *experience.Experience, err error) {
	defer func() { metrics.Observe(resource, "get", err) }()
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in experience.Input) (e *experience.Experience, err error) {
	defer func() { metrics.Observe(resource, "create", err) }()
	e = &experience.Experience{}
	if err := s.prepare(e, in); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("create experience: %w", err)
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, id string, in experience.Input) (e *experience.Experience, err error) {
	defer func() { metrics.Observe(resource, "update", err) }()
	e, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(e, in); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, e); err != nil {
		return nil, fmt.Errorf("update experience: %w", err)
	}
	return e, nil
}

func (s *service) Archive(ctx context.Context, id string) (e *experience.Experience, err error) {
	defer func() { metrics.Observe(resource, "archive", err) }()
	e, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Archived = true
	if err := s.repo.Replace(ctx, e); err != nil {
		return nil, fmt.Errorf("archive experience: %w", err)
	}
	return e, nil
}

func (s *service) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.Observe(resource, "delete", err) }()
	return s.repo.Delete(ctx, id)
}

func (s *service) DeleteAll(ctx context.Context) (n int64, err error) {
	defer func() { metrics.Observe(resource, "delete_all", err) }()
	n, err = s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all experiences: %w", err)
	}
	return n, nil
}

func (s *service) Skills(ctx context.Context) (out []experience.SkillCount, err error) {
	defer func() { metrics.Observe(resource, "skills", err) }()
	out, err = s.repo.SkillCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("skills summary: %w", err)
	}
	return out, nil
}

// prepare applies in to e and validates the merged record. Parse errors and
// rule violations are reported together.
func (s *service) prepare(e *experience.Experience, in experience.Input) error {
	errs := experience.Apply(e, in)
	if err := s.v.Check(e); err != nil {
		if verrs, ok := err.(validation.Errors); ok {
			errs = mergeErrors(errs, verrs)
		} else {
			return err
		}
	}
	return errs.Err()
}

// mergeErrors appends b to a, skipping fields a already reports.
func mergeErrors(a, b validation.Errors) validation.Errors {
	seen := make(map[string]bool, len(a))
	for _, fe := range a {
		seen[fe.Field] = true
	}
	for _, fe := range b {
		if !seen[fe.Field] {
			a = append(a, fe)
		}
	}
	return a
}
