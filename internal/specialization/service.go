package specialization

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/config"

	"github.com/gosimple/slug"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const catalogCacheKey = "catalog"

// Service defines the interface for specialization business logic.
type Service interface {
	List(ctx context.Context) ([]Specialization, error)
	Get(ctx context.Context, id uint) (*Specialization, error)
	// Resolve loads exactly the given ids; any unknown id is a validation error.
	Resolve(ctx context.Context, ids []uint) ([]Specialization, error)

	Create(ctx context.Context, req UpsertSpecializationRequest) (*Specialization, error)
	Update(ctx context.Context, id uint, req UpsertSpecializationRequest) (*Specialization, error)
	Delete(ctx context.Context, id uint) error
	Seed(ctx context.Context, entries []SeedEntry) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	cache  *cache.Cache
}

// NewService creates a new specialization service. The public catalog is cached for
// CATALOG_CACHE_TTL_SECONDS and invalidated on every write.
func NewService(repo Repository, logger *zap.Logger, cfg *config.Config) Service {
	ttl := cfg.CatalogCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:   repo,
		logger: logger.Named("SpecializationService"),
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (s *service) List(ctx context.Context) ([]Specialization, error) {
	if cached, ok := s.cache.Get(catalogCacheKey); ok {
		return cached.([]Specialization), nil
	}
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list specializations", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve specializations.")
	}
	s.cache.SetDefault(catalogCacheKey, items)
	return items, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Specialization, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Resolve(ctx context.Context, ids []uint) ([]Specialization, error) {
	unique := dedupe(ids)
	items, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		s.logger.Error("Failed to resolve specializations", zap.Uints("ids", unique), zap.Error(err))
		return nil, err
	}
	if len(items) != len(unique) {
		found := make(map[uint]struct{}, len(items))
		for _, it := range items {
			found[it.ID] = struct{}{}
		}
		var missing []uint
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, common.NewValidationAPIError(map[string]string{
			"specialization_ids": fmt.Sprintf("Unknown specialization ids: %v.", missing),
		})
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, req UpsertSpecializationRequest) (*Specialization, error) {
	item := &Specialization{
		Name:        strings.TrimSpace(req.Name),
		Slug:        makeSlug(req.Slug, req.Name),
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Warn("Failed to create specialization", zap.Error(err), zap.String("name", item.Name))
		return nil, err
	}
	s.cache.Delete(catalogCacheKey)
	s.logger.Info("Specialization created", zap.Uint("id", item.ID), zap.String("slug", item.Slug))
	return item, nil
}

func (s *service) Update(ctx context.Context, id uint, req UpsertSpecializationRequest) (*Specialization, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(req.Name)
	item.Slug = makeSlug(req.Slug, req.Name)
	item.Description = req.Description

	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Warn("Failed to update specialization", zap.Error(err), zap.Uint("id", id))
		return nil, err
	}
	s.cache.Delete(catalogCacheKey)
	s.logger.Info("Specialization updated", zap.Uint("id", id))
	return item, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete specialization", zap.Error(err), zap.Uint("id", id))
		return err
	}
	s.cache.Delete(catalogCacheKey)
	s.logger.Info("Specialization deleted", zap.Uint("id", id))
	return nil
}

func (s *service) Seed(ctx context.Context, entries []SeedEntry) (int64, error) {
	items := make([]Specialization, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		sl := makeSlug(e.Slug, name)
		if _, dup := seen[sl]; dup {
			continue
		}
		seen[sl] = struct{}{}
		items = append(items, Specialization{Name: name, Slug: sl, Description: common.StringPtr(strings.TrimSpace(e.Description))})
	}

	written, err := s.repo.UpsertBySlug(ctx, items)
	if err != nil {
		s.logger.Error("Failed to seed specializations", zap.Error(err))
		return 0, err
	}
	s.cache.Delete(catalogCacheKey)
	s.logger.Info("Specialization catalog seeded", zap.Int("entries", len(items)), zap.Int64("rows_written", written))
	return written, nil
}

func makeSlug(requested, name string) string {
	if strings.TrimSpace(requested) != "" {
		return slug.Make(requested)
	}
	return slug.Make(name)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
