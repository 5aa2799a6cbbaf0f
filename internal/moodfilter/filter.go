// Package moodfilter narrows lists of mood events by mood label, reason
// keyword and a rolling one-week window.
package moodfilter

import (
	"strings"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
)

// WeekMillis is the length of the recent-week window in milliseconds.
const WeekMillis int64 = 7 * 24 * 60 * 60 * 1000

// Criteria selects which filters run and with which parameters.
// Reason must be a single word; callers validate that before filtering.
type Criteria struct {
	ByMood       bool
	Mood         string
	ByReason     bool
	Reason       string
	ByRecentWeek bool
}

// Enabled reports whether any filter is switched on.
func (c Criteria) Enabled() bool {
	return c.ByMood || c.ByReason || c.ByRecentWeek
}

// Filter returns the events matching every enabled filter, applied in the
// order mood, reason, week. The input slice is never modified; with no filter
// enabled a copy of it is returned.
func Filter(events []models.MoodEvent, c Criteria, now time.Time) []models.MoodEvent {
	result := make([]models.MoodEvent, len(events))
	copy(result, events)

	if c.ByMood {
		result = keep(result, func(e *models.MoodEvent) bool {
			return MatchesMood(e, c.Mood)
		})
	}
	if c.ByReason {
		result = keep(result, func(e *models.MoodEvent) bool {
			return MatchesReason(e, c.Reason)
		})
	}
	if c.ByRecentWeek {
		cutoff := now.UnixMilli() - WeekMillis
		result = keep(result, func(e *models.MoodEvent) bool {
			return e.Timestamp >= cutoff
		})
	}
	return result
}

// MatchesMood is a case-sensitive substring check on the mood label.
func MatchesMood(e *models.MoodEvent, mood string) bool {
	return strings.Contains(e.Mood, mood)
}

// MatchesReason reports whether any whitespace-separated word of the reason
// equals keyword, ignoring case. Partial words never match.
func MatchesReason(e *models.MoodEvent, keyword string) bool {
	for _, word := range strings.Fields(e.Reason) {
		if strings.EqualFold(word, keyword) {
			return true
		}
	}
	return false
}

func keep(events []models.MoodEvent, pred func(*models.MoodEvent) bool) []models.MoodEvent {
	out := events[:0]
	for i := range events {
		if pred(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}
