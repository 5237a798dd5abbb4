package model

import (
	"slices"
	"strings"
	"time"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// Event represents a single immutable episodic memory record. One event maps
// to exactly one file on disk; the file is never rewritten after creation.
type Event struct {
	ID        types.EventID  `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Content   string         `json:"content"`
	Type      string         `json:"type"`
	Tags      []string       `json:"tags"`
	Entities  []string       `json:"entities"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks if the Event carries the minimal required fields
func (e *Event) Validate() error {
	if err := e.ID.Validate(); err != nil {
		return err
	}
	return nil
}

// Classify computes the directory bucket for an event from its type and
// tags. Rules are evaluated in fixed precedence, first match wins. The
// result is bound to the event at write time and never recomputed for files
// already on disk, so changing these rules only affects future writes.
func Classify(eventType string, tags []string) types.EventCategory {
	hasTag := func(names ...string) bool {
		for _, n := range names {
			if slices.Contains(tags, n) {
				return true
			}
		}
		return false
	}

	switch {
	case eventType == "reflection":
		return types.EventCategoryReflections
	case eventType == "dream" && hasTag("audio", "transcript"):
		return types.EventCategoryAudioDreams
	case eventType == "dream":
		return types.EventCategoryDreams
	case eventType == "audio":
		return types.EventCategoryAudio
	case hasTag("ingested", "ai"):
		return types.EventCategoryAIIngestor
	case hasTag("curated"):
		return types.EventCategoryCurated
	case hasTag("audio", "transcript"):
		return types.EventCategoryAudio
	case eventType == "tool_invocation":
		return types.EventCategoryToolInvocation
	case eventType == "action":
		return types.EventCategoryActions
	default:
		return types.EventCategoryEpisodic
	}
}

const maxSlugLen = 50

// Slugify lowercases content, collapses every run of characters outside
// [a-z0-9] into a single hyphen, trims leading/trailing hyphens and caps the
// result at 50 characters. Empty results become "event" so a filename is
// always produced.
func Slugify(content string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(content) {
		isSafe := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isSafe {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
		if b.Len() >= maxSlugLen {
			break
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "event"
	}
	return slug
}

// EventFile describes one event file found by a directory walk. Timestamp is
// the filesystem modification time of the file, not the event's own
// timestamp field: listing never decrypts, and recently touched files
// surface first. Type is the top-level category directory the file lives in.
type EventFile struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// DateRange filters walk results by timestamp. Zero bounds are open ends.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// IsZero reports whether the range has no bounds at all
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range (inclusive bounds)
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
