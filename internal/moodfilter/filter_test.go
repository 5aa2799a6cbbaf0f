package moodfilter

import (
	"testing"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
)

const day = int64(24 * 60 * 60 * 1000)

func sampleEvents(now time.Time) []models.MoodEvent {
	t0 := now.UnixMilli()
	return []models.MoodEvent{
		{ID: "1", Mood: "😄Happiness", Reason: "Feeling great!", Timestamp: t0},
		{ID: "2", Mood: "😠Anger", Reason: "Frustrated with work", Timestamp: t0 - 8*day},
	}
}

func ids(events []models.MoodEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func equalIDs(t *testing.T, got []models.MoodEvent, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("Expected ids %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("Expected ids %v, got %v", want, g)
		}
	}
}

func TestFilterNoCriteriaReturnsCopy(t *testing.T) {
	now := time.Now()
	events := sampleEvents(now)

	got := Filter(events, Criteria{}, now)
	equalIDs(t, got, "1", "2")

	got[0].Mood = "changed"
	if events[0].Mood != "😄Happiness" {
		t.Error("Filter must not share backing storage with its input")
	}
}

func TestFilterByMood(t *testing.T) {
	now := time.Now()
	got := Filter(sampleEvents(now), Criteria{ByMood: true, Mood: "Happiness"}, now)
	equalIDs(t, got, "1")

	// substring match, case-sensitive
	got = Filter(sampleEvents(now), Criteria{ByMood: true, Mood: "happiness"}, now)
	equalIDs(t, got)
	got = Filter(sampleEvents(now), Criteria{ByMood: true, Mood: "Ang"}, now)
	equalIDs(t, got, "2")
}

func TestFilterByReason(t *testing.T) {
	now := time.Now()
	got := Filter(sampleEvents(now), Criteria{ByReason: true, Reason: "great!"}, now)
	equalIDs(t, got, "1")

	got = Filter(sampleEvents(now), Criteria{ByReason: true, Reason: "WORK"}, now)
	equalIDs(t, got, "2")

	// whole words only
	got = Filter(sampleEvents(now), Criteria{ByReason: true, Reason: "great"}, now)
	equalIDs(t, got)
	got = Filter(sampleEvents(now), Criteria{ByReason: true, Reason: "Frust"}, now)
	equalIDs(t, got)
}

func TestFilterByReasonSkipsEmptyReason(t *testing.T) {
	now := time.Now()
	events := []models.MoodEvent{{ID: "a", Mood: "😢Sadness"}, {ID: "b", Reason: "  rain  today ", Mood: "😢Sadness"}}
	got := Filter(events, Criteria{ByReason: true, Reason: "rain"}, now)
	equalIDs(t, got, "b")
}

func TestFilterByRecentWeek(t *testing.T) {
	now := time.Now()
	got := Filter(sampleEvents(now), Criteria{ByRecentWeek: true}, now)
	equalIDs(t, got, "1")

	edge := []models.MoodEvent{
		{ID: "on", Timestamp: now.UnixMilli() - WeekMillis},
		{ID: "off", Timestamp: now.UnixMilli() - WeekMillis - 1},
	}
	equalIDs(t, Filter(edge, Criteria{ByRecentWeek: true}, now), "on")
}

func TestFilterCombinedIsIntersection(t *testing.T) {
	now := time.Now()
	t0 := now.UnixMilli()
	events := []models.MoodEvent{
		{ID: "1", Mood: "😄Happiness", Reason: "sunny day", Timestamp: t0},
		{ID: "2", Mood: "😄Happiness", Reason: "sunny day", Timestamp: t0 - 10*day},
		{ID: "3", Mood: "😄Happiness", Reason: "cloudy", Timestamp: t0},
		{ID: "4", Mood: "😠Anger", Reason: "sunny", Timestamp: t0},
	}
	c := Criteria{ByMood: true, Mood: "Happiness", ByReason: true, Reason: "Sunny", ByRecentWeek: true}
	got := Filter(events, c, now)
	equalIDs(t, got, "1")

	byMood := ids(Filter(events, Criteria{ByMood: true, Mood: "Happiness"}, now))
	byReason := ids(Filter(events, Criteria{ByReason: true, Reason: "Sunny"}, now))
	byWeek := ids(Filter(events, Criteria{ByRecentWeek: true}, now))
	in := func(set []string, id string) bool {
		for _, s := range set {
			if s == id {
				return true
			}
		}
		return false
	}
	for _, e := range events {
		want := in(byMood, e.ID) && in(byReason, e.ID) && in(byWeek, e.ID)
		if in(ids(got), e.ID) != want {
			t.Errorf("event %s: combined result disagrees with intersection", e.ID)
		}
	}
}

func TestFilterNilInput(t *testing.T) {
	got := Filter(nil, Criteria{ByMood: true, Mood: "x", ByReason: true, Reason: "y", ByRecentWeek: true}, time.Now())
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}
