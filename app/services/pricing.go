package services

import (
	"context"
	"errors"
	"time"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/pkg/cache"
	"github.com/campusprint/printhub/pkg/metrics"
)

const (
	PricingCacheKey = "pricing:latest"
	pricingCacheTTL = time.Minute
)

// Price computes the total for files under cfg. Each term is evaluated left
// to right in float64 exactly like the browser estimate, so a quote and the
// stored total agree for the same input.
func Price(files []models.OrderFile, cfg models.PricingConfig) float64 {
	total := 0.0
	for _, f := range files {
		pages := f.PageCount
		if f.IsDoubleSided {
			pages = (pages + 1) / 2
		}
		// the explicit conversion rounds here and keeps the compiler from
		// fusing the multiply into the sum
		total += float64(float64(pages) * cfg.Rate(f.ColorType, f.IsDoubleSided) * float64(f.Copies))
	}
	return total + cfg.DeliveryFee
}

// PricingService serves the pricing row in force.
type PricingService struct {
	repo  *repositories.PricingRepository
	cache *cache.Store
}

// NewPricingService returns a PricingService. store may be nil.
func NewPricingService(repo *repositories.PricingRepository, store *cache.Store) *PricingService {
	return &PricingService{repo: repo, cache: store}
}

// Current returns the latest pricing row, read through the cache.
func (s *PricingService) Current(ctx context.Context) (*models.PricingConfig, error) {
	loaded := false
	p, err := cache.Remember(ctx, s.cache, PricingCacheKey, pricingCacheTTL,
		func(ctx context.Context) (*models.PricingConfig, error) {
			loaded = true
			return s.repo.Latest(ctx)
		})
	if s.cache.Available() {
		metrics.RecordCache(PricingCacheKey, !loaded)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPricingUnavailable
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update inserts p as the row in force and drops the cached copy.
func (s *PricingService) Update(ctx context.Context, p *models.PricingConfig) error {
	if fields := validatePricing(p); len(fields) > 0 {
		return Invalid(fields)
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return err
	}
	return s.cache.Del(ctx, PricingCacheKey)
}

func validatePricing(p *models.PricingConfig) map[string]string {
	fields := map[string]string{}
	check := func(name string, v float64) {
		if v < 0 {
			fields[name] = "The " + name + " must not be negative."
		}
	}
	check("bw_single_page", p.BWSinglePage)
	check("bw_double_page", p.BWDoublePage)
	check("color_single_page", p.ColorSinglePage)
	check("color_double_page", p.ColorDoublePage)
	check("delivery_fee", p.DeliveryFee)
	return fields
}
