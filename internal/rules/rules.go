package rules

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Rules is the materialized scheduling configuration. The engine never
// reads it globally: each booking call receives the value loaded at
// call start.
type Rules struct {
	AvoidConcurrency      AvoidConcurrency      `json:"avoid_concurrency"`
	MaxSimultaneous       MaxSimultaneous       `json:"max_simultaneous"`
	DockBuffer            DockBuffer            `json:"dock_buffer"`
	SizePriority          SizePriority          `json:"size_priority"`
	DailyConcentration    DailyConcentration    `json:"daily_concentration"`
	DockDistribution      DockDistribution      `json:"dock_distribution"`
	CategoryPreferredTime CategoryPreferredTime `json:"category_preferred_time"`
	MinLeadTime           MinLeadTime           `json:"min_lead_time"`
}

type AvoidConcurrency struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"` // "suggest" or "enforce"
}

type MaxSimultaneous struct {
	Enabled bool `json:"enabled"`
	Count   int  `json:"count"`
}

type DockBuffer struct {
	Enabled bool `json:"enabled"`
	Minutes int  `json:"minutes"`
}

type SizePriority struct {
	Enabled    bool     `json:"enabled"`
	LargeSlots []string `json:"large_slots"`
	SmallSlots []string `json:"small_slots"`
}

type DailyConcentration struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold"`
}

type DockDistribution struct {
	Enabled        bool   `json:"enabled"`
	LargePreferred string `json:"large_preferred"`
	SmallPreferred string `json:"small_preferred"`
}

type CategoryPreferredTime struct {
	Enabled bool              `json:"enabled"`
	Map     map[string]string `json:"map"`
}

type MinLeadTime struct {
	Enabled bool `json:"enabled"`
	Hours   int  `json:"hours"`
}

func Defaults() Rules {
	return Rules{
		AvoidConcurrency:      AvoidConcurrency{Mode: "suggest"},
		MaxSimultaneous:       MaxSimultaneous{Count: 2},
		DockBuffer:            DockBuffer{Minutes: 15},
		SizePriority:          SizePriority{LargeSlots: []string{"08:00", "10:00"}, SmallSlots: []string{"14:00", "16:00", "18:00"}},
		DailyConcentration:    DailyConcentration{Threshold: 4},
		DockDistribution:      DockDistribution{LargePreferred: "M1", SmallPreferred: "M3"},
		CategoryPreferredTime: CategoryPreferredTime{Map: map[string]string{}},
		MinLeadTime:           MinLeadTime{Hours: 24},
	}
}

// Storage keys, one per scalar field.
const (
	keyAvoidConcurrency     = "rule_avoid_concurrency"
	keyAvoidConcurrencyMode = "rule_avoid_concurrency_mode"
	keyMaxSimultaneous      = "rule_max_simultaneous"
	keyMaxSimultaneousCount = "rule_max_simultaneous_count"
	keyDockBuffer           = "rule_dock_buffer"
	keyDockBufferMinutes    = "rule_dock_buffer_minutes"
	keySizePriority         = "rule_size_priority"
	keySizePriorityLarge    = "rule_size_priority_large_slots"
	keySizePrioritySmall    = "rule_size_priority_small_slots"
	keyDailyConcentration   = "rule_daily_concentration"
	keyDailyThreshold       = "rule_daily_concentration_threshold"
	keyDockDistribution     = "rule_dock_distribution"
	keyDockLargePreferred   = "rule_dock_large_preferred"
	keyDockSmallPreferred   = "rule_dock_small_preferred"
	keyCategoryTime         = "rule_category_preferred_time"
	keyCategoryTimeMap      = "rule_category_preferred_map"
	keyMinLeadTime          = "rule_min_lead_time"
	keyMinLeadTimeHours     = "rule_min_lead_time_hours"
)

var allKeys = []string{
	keyAvoidConcurrency, keyAvoidConcurrencyMode,
	keyMaxSimultaneous, keyMaxSimultaneousCount,
	keyDockBuffer, keyDockBufferMinutes,
	keySizePriority, keySizePriorityLarge, keySizePrioritySmall,
	keyDailyConcentration, keyDailyThreshold,
	keyDockDistribution, keyDockLargePreferred, keyDockSmallPreferred,
	keyCategoryTime, keyCategoryTimeMap,
	keyMinLeadTime, keyMinLeadTimeHours,
}

func fromConfig(values map[string]string) Rules {
	d := Defaults()

	return Rules{
		AvoidConcurrency: AvoidConcurrency{
			Enabled: getBool(values, keyAvoidConcurrency),
			Mode:    getString(values, keyAvoidConcurrencyMode, d.AvoidConcurrency.Mode),
		},
		MaxSimultaneous: MaxSimultaneous{
			Enabled: getBool(values, keyMaxSimultaneous),
			Count:   getInt(values, keyMaxSimultaneousCount, d.MaxSimultaneous.Count),
		},
		DockBuffer: DockBuffer{
			Enabled: getBool(values, keyDockBuffer),
			Minutes: getInt(values, keyDockBufferMinutes, d.DockBuffer.Minutes),
		},
		SizePriority: SizePriority{
			Enabled:    getBool(values, keySizePriority),
			LargeSlots: getCSV(values, keySizePriorityLarge, d.SizePriority.LargeSlots),
			SmallSlots: getCSV(values, keySizePrioritySmall, d.SizePriority.SmallSlots),
		},
		DailyConcentration: DailyConcentration{
			Enabled:   getBool(values, keyDailyConcentration),
			Threshold: getInt(values, keyDailyThreshold, d.DailyConcentration.Threshold),
		},
		DockDistribution: DockDistribution{
			Enabled:        getBool(values, keyDockDistribution),
			LargePreferred: getString(values, keyDockLargePreferred, d.DockDistribution.LargePreferred),
			SmallPreferred: getString(values, keyDockSmallPreferred, d.DockDistribution.SmallPreferred),
		},
		CategoryPreferredTime: CategoryPreferredTime{
			Enabled: getBool(values, keyCategoryTime),
			Map:     getJSONMap(values, keyCategoryTimeMap),
		},
		MinLeadTime: MinLeadTime{
			Enabled: getBool(values, keyMinLeadTime),
			Hours:   getInt(values, keyMinLeadTimeHours, d.MinLeadTime.Hours),
		},
	}
}

func getBool(values map[string]string, key string) bool {
	return values[key] == "true"
}

func getString(values map[string]string, key, def string) string {
	if v := values[key]; v != "" {
		return v
	}
	return def
}

func getInt(values map[string]string, key string, def int) int {
	v, ok := values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getCSV(values map[string]string, key string, def []string) []string {
	v := values[key]
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getJSONMap(values map[string]string, key string) map[string]string {
	v := values[key]
	if v == "" {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(v), &m); err != nil {
		return map[string]string{}
	}
	return m
}
