// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"
	"strconv"

	"github.com/tenex-chat/tenex/model"
)

// runtimeCutoffTimestamp gates runtime accounting: messages older
// than this (2025-01-24 00:00:00 UTC) predate reliable runtime
// metadata and are ignored.
const runtimeCutoffTimestamp = 1737676800

// DayCount is one bucket of the per-day message series.
type DayCount struct {
	Day       uint64 `json:"day"`
	UserCount uint64 `json:"user_count"`
	AllCount  uint64 `json:"all_count"`
}

// HourStat is one bucket of the per-hour LLM activity series.
type HourStat struct {
	Day          uint64 `json:"day"`
	Hour         uint8  `json:"hour"`
	TotalTokens  uint64 `json:"total_tokens"`
	MessageCount uint64 `json:"message_count"`
}

// RuntimeDay is one bucket of the per-day runtime series.
type RuntimeDay struct {
	Day       uint64 `json:"day"`
	RuntimeMS uint64 `json:"runtime_ms"`
}

type hourKey struct {
	day  uint64
	hour uint8
}

// StatisticsStore pre-aggregates three time series for O(1) lookup:
// messages per day (user vs all), LLM activity (tokens, messages) per
// hour, and LLM runtime per day. Increments are commutative, so
// ingestion order never matters. Bucketing is strictly UTC.
//
// Construct with [NewStatisticsStore]. Not safe for concurrent use.
type StatisticsStore struct {
	messagesByDay map[uint64]*DayCount
	llmByHour     map[hourKey]*HourStat
	runtimeByDay  map[uint64]uint64
}

// NewStatisticsStore returns an empty statistics store.
func NewStatisticsStore() *StatisticsStore {
	return &StatisticsStore{
		messagesByDay: make(map[uint64]*DayCount),
		llmByHour:     make(map[hourKey]*HourStat),
		runtimeByDay:  make(map[uint64]uint64),
	}
}

// dayEpoch truncates a Unix timestamp to its UTC day start.
func dayEpoch(ts uint64) uint64 { return (ts / 86400) * 86400 }

// hourOfDay returns the UTC hour within the timestamp's day.
func hourOfDay(ts uint64) uint8 { return uint8((ts - dayEpoch(ts)) / 3600) }

// RecordMessage updates all three series from a message. Token and
// runtime counts default to zero when the metadata fails to parse.
func (s *StatisticsStore) RecordMessage(m *model.Message, currentUser string) {
	day := dayEpoch(m.CreatedAt)
	count, ok := s.messagesByDay[day]
	if !ok {
		count = &DayCount{Day: day}
		s.messagesByDay[day] = count
	}
	count.AllCount++
	if m.Pubkey == currentUser {
		count.UserCount++
	}

	if len(m.LLMMetadata) > 0 {
		key := hourKey{day: day, hour: hourOfDay(m.CreatedAt)}
		stat, ok := s.llmByHour[key]
		if !ok {
			stat = &HourStat{Day: key.day, Hour: key.hour}
			s.llmByHour[key] = stat
		}
		stat.MessageCount++
		tokens, _ := strconv.ParseUint(m.LLMMetadata["total-tokens"], 10, 64)
		stat.TotalTokens += tokens

		if m.CreatedAt >= runtimeCutoffTimestamp {
			if ms, err := strconv.ParseUint(m.LLMMetadata["runtime"], 10, 64); err == nil {
				s.runtimeByDay[day] += ms
			}
		}
	}
}

// MessagesByDay returns the day buckets within the last numDays
// ending at now, sorted ascending by day. Empty days are absent.
func (s *StatisticsStore) MessagesByDay(numDays int, now uint64) []DayCount {
	since := windowStart(now, uint64(numDays)*86400)
	var out []DayCount
	for day, count := range s.messagesByDay {
		if day >= since && day <= now {
			out = append(out, *count)
		}
	}
	slices.SortFunc(out, func(a, b DayCount) int {
		return compareAsc(a.Day, b.Day)
	})
	return out
}

// TokensByHour returns the hour buckets within the last numHours
// ending at now, sorted ascending by (day, hour).
func (s *StatisticsStore) TokensByHour(numHours int, now uint64) []HourStat {
	since := windowStart(now, uint64(numHours)*3600)
	var out []HourStat
	for key, stat := range s.llmByHour {
		bucket := key.day + uint64(key.hour)*3600
		if bucket >= since && bucket <= now {
			out = append(out, *stat)
		}
	}
	slices.SortFunc(out, func(a, b HourStat) int {
		if c := compareAsc(a.Day, b.Day); c != 0 {
			return c
		}
		return compareAsc(uint64(a.Hour), uint64(b.Hour))
	})
	return out
}

// RuntimeByDay returns the runtime buckets within the last numDays
// ending at now, sorted ascending by day.
func (s *StatisticsStore) RuntimeByDay(numDays int, now uint64) []RuntimeDay {
	since := windowStart(now, uint64(numDays)*86400)
	var out []RuntimeDay
	for day, ms := range s.runtimeByDay {
		if day >= since && day <= now {
			out = append(out, RuntimeDay{Day: day, RuntimeMS: ms})
		}
	}
	slices.SortFunc(out, func(a, b RuntimeDay) int {
		return compareAsc(a.Day, b.Day)
	})
	return out
}

// TodayRuntimeMS returns the runtime accumulated in the current UTC
// day.
func (s *StatisticsStore) TodayRuntimeMS(now uint64) uint64 {
	return s.runtimeByDay[dayEpoch(now)]
}

// Rebuild reconstructs all three series from scratch.
func (s *StatisticsStore) Rebuild(messagesByThread map[string][]*model.Message, currentUser string) {
	s.messagesByDay = make(map[uint64]*DayCount)
	s.llmByHour = make(map[hourKey]*HourStat)
	s.runtimeByDay = make(map[uint64]uint64)
	for _, messages := range messagesByThread {
		for _, m := range messages {
			s.RecordMessage(m, currentUser)
		}
	}
}

func windowStart(now, window uint64) uint64 {
	if window >= now {
		return 0
	}
	return now - window
}

func compareAsc(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
