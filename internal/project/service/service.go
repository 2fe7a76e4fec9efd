package service

import (
	"context"
	"fmt"

	"github.com/workexp/workexp-api/internal/project"
	"github.com/workexp/workexp-api/internal/project/repository"
	"github.com/workexp/workexp-api/pkg/metrics"
	"github.com/workexp/workexp-api/pkg/validation"
	"go.mongodb.org/mongo-driver/mongo"
)

const resource = "project"

type Service interface {
	List(ctx context.Context, f project.Filter) ([]*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Create(ctx context.Context, in project.Input) (*project.Project, error)
	Update(ctx context.Context, id string, in project.Input) (*project.Project, error)
	Delete(ctx context.Context, id string) error
}

func NewMemoryService() Service { return New(repository.NewMemoryRepo()) }

func NewMongoService(col *mongo.Collection) Service { return New(repository.NewMongoRepo(col)) }

func New(repo repository.Repository) Service {
	return &service{repo: repo, v: project.NewValidator()}
}

type service struct {
	repo repository.Repository
	v    *validation.Validator
}

func (s *service) List(ctx context.Context, f project.Filter) (out []*project.Project, err error) {
	defer func() { metrics.Observe(resource, "list", err) }()
	out, err = s.repo.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (p *project.Project, err error) {
	defer func() { metrics.Observe(resource, "get", err) }()
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in project.Input) (p *project.Project, err error) {
	defer func() { metrics.Observe(resource, "create", err) }()
	p = &project.Project{}
	project.Apply(p, in)
	if err := s.v.Check(p); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, in project.Input) (p *project.Project, err error) {
	defer func() { metrics.Observe(resource, "update", err) }()
	p, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Apply(p, in)
	if err := s.v.Check(p); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.Observe(resource, "delete", err) }()
	return s.repo.Delete(ctx, id)
}
