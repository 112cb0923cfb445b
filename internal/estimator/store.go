package estimator

import (
	"context"
	"sync"
	"time"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
)

const coeffCacheTTL = 5 * time.Minute

type cachedCoeffs struct {
	coeffs     Coefficients
	maxMinutes float64
	expiresAt  time.Time
}

// Store reads the active CoefficientSet rows with a short TTL cache,
// falling back to the seed table when a category has no row yet.
type Store struct {
	repo domain.Repository

	mu    sync.RWMutex
	cache map[string]cachedCoeffs
}

func NewStore(repo domain.Repository) *Store {
	return &Store{
		repo:  repo,
		cache: make(map[string]cachedCoeffs),
	}
}

func (s *Store) Current(ctx context.Context, category string) (Coefficients, float64, error) {
	s.mu.RLock()
	if entry, ok := s.cache[category]; ok && time.Now().Before(entry.expiresAt) {
		s.mu.RUnlock()
		return entry.coeffs, entry.maxMinutes, nil
	}
	s.mu.RUnlock()

	set, err := s.repo.GetCoefficientSet(ctx, category)
	if err != nil {
		return Coefficients{}, 0, err
	}

	coeffs := DefaultCoefficients(category)
	maxMinutes := 0.0
	if set != nil {
		coeffs = Coefficients{TD: set.TD, TA: set.TA, TL: set.TL, TU: set.TU}
		maxMinutes = set.MaxMinutes
	}

	s.mu.Lock()
	s.cache[category] = cachedCoeffs{
		coeffs:     coeffs,
		maxMinutes: maxMinutes,
		expiresAt:  time.Now().Add(coeffCacheTTL),
	}
	s.mu.Unlock()

	return coeffs, maxMinutes, nil
}

// Invalidate drops the cached entry after a calibration is applied.
func (s *Store) Invalidate(category string) {
	s.mu.Lock()
	delete(s.cache, category)
	s.mu.Unlock()
}

var _ Source = (*Store)(nil)
