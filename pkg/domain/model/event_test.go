package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		eventType string
		tags      []string
		expect    types.EventCategory
	}{
		{"reflection", "reflection", nil, types.EventCategoryReflections},
		{"dream with audio tag", "dream", []string{"audio"}, types.EventCategoryAudioDreams},
		{"dream with transcript tag", "dream", []string{"transcript"}, types.EventCategoryAudioDreams},
		{"plain dream", "dream", []string{}, types.EventCategoryDreams},
		{"audio type", "audio", nil, types.EventCategoryAudio},
		{"ingested tag", "note", []string{"ingested"}, types.EventCategoryAIIngestor},
		{"ai tag", "note", []string{"ai"}, types.EventCategoryAIIngestor},
		{"curated tag", "note", []string{"curated"}, types.EventCategoryCurated},
		{"audio tag on note", "note", []string{"audio"}, types.EventCategoryAudio},
		{"transcript tag on note", "note", []string{"transcript"}, types.EventCategoryAudio},
		{"tool invocation", "tool_invocation", nil, types.EventCategoryToolInvocation},
		{"action", "action", []string{}, types.EventCategoryActions},
		{"unmatched", "note", nil, types.EventCategoryEpisodic},
		{"empty", "", nil, types.EventCategoryEpisodic},

		// Precedence: type rules beat tag rules where both apply
		{"reflection with curated tag", "reflection", []string{"curated"}, types.EventCategoryReflections},
		{"audio type with curated tag", "audio", []string{"curated"}, types.EventCategoryAudio},
		{"ai tag beats curated tag", "note", []string{"curated", "ai"}, types.EventCategoryAIIngestor},
		{"action with audio tag", "action", []string{"audio"}, types.EventCategoryAudio},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, model.Classify(tc.eventType, tc.tags)).Equal(tc.expect)

			// Pure function: a second evaluation agrees
			gt.Value(t, model.Classify(tc.eventType, tc.tags)).Equal(tc.expect)
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		name    string
		content string
		expect  string
	}{
		{"simple", "Morning Walk", "morning-walk"},
		{"punctuation collapses", "walked... by the RIVER!!", "walked-by-the-river"},
		{"digits kept", "3 cups of coffee", "3-cups-of-coffee"},
		{"leading symbols trimmed", "!!!important", "important"},
		{"empty defaults", "", "event"},
		{"only symbols defaults", "@#$%", "event"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, model.Slugify(tc.content)).Equal(tc.expect)
		})
	}

	t.Run("capped at 50", func(t *testing.T) {
		slug := model.Slugify(strings.Repeat("remember this thing ", 10))
		gt.Bool(t, len(slug) <= 50).True()
		gt.Bool(t, strings.HasSuffix(slug, "-")).False()
	})
}

func TestNewEventID(t *testing.T) {
	id1 := types.NewEventID()
	id2 := types.NewEventID()

	gt.NoError(t, id1.Validate())
	gt.NoError(t, id2.Validate())
	gt.Value(t, id1).NotEqual(id2)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	gt.NoError(t, err).Required()
	return ts
}

func TestDateRange(t *testing.T) {
	from := mustTime(t, "2026-03-10T00:00:00Z")
	to := mustTime(t, "2026-03-12T23:59:59Z")

	r := model.DateRange{From: from, To: to}
	gt.Bool(t, r.Contains(mustTime(t, "2026-03-11T12:00:00Z"))).True()
	gt.Bool(t, r.Contains(from)).True()
	gt.Bool(t, r.Contains(mustTime(t, "2026-03-09T23:59:59Z"))).False()
	gt.Bool(t, r.Contains(mustTime(t, "2026-03-13T00:00:00Z"))).False()

	open := model.DateRange{From: from}
	gt.Bool(t, open.Contains(mustTime(t, "2030-01-01T00:00:00Z"))).True()
	gt.Bool(t, model.DateRange{}.IsZero()).True()
}
