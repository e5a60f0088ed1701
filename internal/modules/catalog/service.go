package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/pkg/validator"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

const maxSlugLength = 20

type TagRepository interface {
	Create(ctx context.Context, t *domain.Tag) error
	List(ctx context.Context) ([]domain.Tag, error)
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Search(ctx context.Context, prefix string) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	tags     TagRepository
	products ProductRepository
}

func NewService(tags TagRepository, products ProductRepository) *Service {
	return &Service{tags: tags, products: products}
}

/* ---------- TAGS ---------- */

func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

func (s *Service) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTagNotFound
	}
	return tag, err
}

// CreateTag stores a tag. A missing slug is derived from the name.
func (s *Service) CreateTag(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	if req.Slug == "" {
		req.Slug = Slugify(req.Name)
	}
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, errs)
	}

	tag := &domain.Tag{Name: req.Name, Color: strings.ToUpper(req.Color), Slug: req.Slug}
	if err := s.tags.Create(ctx, tag); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("tag %q: %w", req.Name, ErrAlreadyExists)
		}
		return nil, err
	}
	return tag, nil
}

/* ---------- INGREDIENTS ---------- */

// SearchIngredients lists products whose name starts with name.
func (s *Service) SearchIngredients(ctx context.Context, name string) ([]domain.Product, error) {
	return s.products.Search(ctx, name)
}

func (s *Service) GetIngredient(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIngredientNotFound
	}
	return p, err
}

func (s *Service) CreateIngredient(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.MeasurementUnit = strings.TrimSpace(req.MeasurementUnit)
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, errs)
	}

	p := &domain.Product{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.products.Create(ctx, p); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("ingredient %q (%s): %w", req.Name, req.MeasurementUnit, ErrAlreadyExists)
		}
		return nil, err
	}
	return p, nil
}

// Slugify transliterates name into a URL slug that fits the tag column.
func Slugify(name string) string {
	s := slug.Make(name)
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}
