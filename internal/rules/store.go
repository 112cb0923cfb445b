package rules

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dockwise/scheduler/internal/domain/appointment"
)

const cacheTTL = 60 * time.Second

// Store loads scheduling rules from the config table and caches the
// materialized set for a short window. Writes go through Update and
// invalidate the cache, so a booking started right after a rule change
// sees the new values.
type Store struct {
	repo appointment.Repository

	mu      sync.RWMutex
	cached  Rules
	loaded  bool
	expires time.Time
}

func NewStore(repo appointment.Repository) *Store {
	return &Store{repo: repo}
}

// Current returns the active rule set. A storage failure falls back to
// Defaults so a flaky config table never blocks bookings.
func (s *Store) Current(ctx context.Context) Rules {
	s.mu.RLock()
	if s.loaded && time.Now().Before(s.expires) {
		r := s.cached
		s.mu.RUnlock()
		return r
	}
	s.mu.RUnlock()

	values, err := s.repo.ConfigValues(ctx, allKeys)
	if err != nil {
		return Defaults()
	}
	r := fromConfig(values)

	s.mu.Lock()
	s.cached = r
	s.loaded = true
	s.expires = time.Now().Add(cacheTTL)
	s.mu.Unlock()
	return r
}

// Patch carries partial rule updates. Nil sections are left untouched.
type Patch struct {
	AvoidConcurrency      *AvoidConcurrency      `json:"avoid_concurrency"`
	MaxSimultaneous       *MaxSimultaneous       `json:"max_simultaneous"`
	DockBuffer            *DockBuffer            `json:"dock_buffer"`
	SizePriority          *SizePriority          `json:"size_priority"`
	DailyConcentration    *DailyConcentration    `json:"daily_concentration"`
	DockDistribution      *DockDistribution      `json:"dock_distribution"`
	CategoryPreferredTime *CategoryPreferredTime `json:"category_preferred_time"`
	MinLeadTime           *MinLeadTime           `json:"min_lead_time"`
}

// Update persists the patched sections and returns the resulting rule
// set. Each scalar becomes its own config row so partial edits from
// different admins do not clobber each other.
func (s *Store) Update(ctx context.Context, p Patch) (Rules, error) {
	pending := map[string]string{}

	if p.AvoidConcurrency != nil {
		pending[keyAvoidConcurrency] = formatBool(p.AvoidConcurrency.Enabled)
		pending[keyAvoidConcurrencyMode] = p.AvoidConcurrency.Mode
	}
	if p.MaxSimultaneous != nil {
		pending[keyMaxSimultaneous] = formatBool(p.MaxSimultaneous.Enabled)
		pending[keyMaxSimultaneousCount] = strconv.Itoa(p.MaxSimultaneous.Count)
	}
	if p.DockBuffer != nil {
		pending[keyDockBuffer] = formatBool(p.DockBuffer.Enabled)
		pending[keyDockBufferMinutes] = strconv.Itoa(p.DockBuffer.Minutes)
	}
	if p.SizePriority != nil {
		pending[keySizePriority] = formatBool(p.SizePriority.Enabled)
		pending[keySizePriorityLarge] = strings.Join(p.SizePriority.LargeSlots, ",")
		pending[keySizePrioritySmall] = strings.Join(p.SizePriority.SmallSlots, ",")
	}
	if p.DailyConcentration != nil {
		pending[keyDailyConcentration] = formatBool(p.DailyConcentration.Enabled)
		pending[keyDailyThreshold] = strconv.Itoa(p.DailyConcentration.Threshold)
	}
	if p.DockDistribution != nil {
		pending[keyDockDistribution] = formatBool(p.DockDistribution.Enabled)
		pending[keyDockLargePreferred] = p.DockDistribution.LargePreferred
		pending[keyDockSmallPreferred] = p.DockDistribution.SmallPreferred
	}
	if p.CategoryPreferredTime != nil {
		pending[keyCategoryTime] = formatBool(p.CategoryPreferredTime.Enabled)
		raw, err := json.Marshal(p.CategoryPreferredTime.Map)
		if err != nil {
			return Rules{}, err
		}
		pending[keyCategoryTimeMap] = string(raw)
	}
	if p.MinLeadTime != nil {
		pending[keyMinLeadTime] = formatBool(p.MinLeadTime.Enabled)
		pending[keyMinLeadTimeHours] = strconv.Itoa(p.MinLeadTime.Hours)
	}

	for key, value := range pending {
		if err := s.repo.SetConfigValue(ctx, key, value); err != nil {
			return Rules{}, err
		}
	}

	s.Invalidate()
	return s.Current(ctx), nil
}

func (s *Store) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
