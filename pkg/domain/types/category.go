package types

import "fmt"

// StorageCategory is the closed set of top-level buckets the storage router
// resolves under a profile root. Anything outside this set is a
// configuration error, never a silent passthrough.
type StorageCategory string

const (
	CategoryMemory   StorageCategory = "memory"
	CategoryVoice    StorageCategory = "voice"
	CategoryConfig   StorageCategory = "config"
	CategoryOutput   StorageCategory = "output"
	CategoryTraining StorageCategory = "training"
	CategoryCache    StorageCategory = "cache"
	CategoryState    StorageCategory = "state"
)

// AllStorageCategories returns all valid storage categories
func AllStorageCategories() []StorageCategory {
	return []StorageCategory{
		CategoryMemory,
		CategoryVoice,
		CategoryConfig,
		CategoryOutput,
		CategoryTraining,
		CategoryCache,
		CategoryState,
	}
}

// IsValid checks if the storage category is a member of the closed set
func (c StorageCategory) IsValid() bool {
	switch c {
	case CategoryMemory,
		CategoryVoice,
		CategoryConfig,
		CategoryOutput,
		CategoryTraining,
		CategoryCache,
		CategoryState:
		return true
	default:
		return false
	}
}

// Subdir returns the fixed directory name for the category under a profile
// root. The mapping is part of the on-disk contract and must not change for
// existing profiles.
func (c StorageCategory) Subdir() string {
	if c == CategoryMemory {
		return "memories"
	}
	return string(c)
}

// String returns the string representation of the storage category
func (c StorageCategory) String() string {
	return string(c)
}

// ParseStorageCategory parses a string into a StorageCategory
func ParseStorageCategory(s string) (StorageCategory, error) {
	c := StorageCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid storage category: %s", s)
	}
	return c, nil
}

// EventCategory is the directory bucket an episodic event is routed into by
// the write-time classification rule. The assignment is computed once per
// event and never recomputed for files already on disk.
type EventCategory string

const (
	EventCategoryReflections    EventCategory = "reflections"
	EventCategoryAudioDreams    EventCategory = "audio-dreams"
	EventCategoryDreams         EventCategory = "dreams"
	EventCategoryAudio          EventCategory = "audio"
	EventCategoryAIIngestor     EventCategory = "ai-ingestor"
	EventCategoryCurated        EventCategory = "curated"
	EventCategoryToolInvocation EventCategory = "tool-invocations"
	EventCategoryActions        EventCategory = "actions"
	EventCategoryEpisodic       EventCategory = "episodic"
)

// AllEventCategories returns all event category buckets
func AllEventCategories() []EventCategory {
	return []EventCategory{
		EventCategoryReflections,
		EventCategoryAudioDreams,
		EventCategoryDreams,
		EventCategoryAudio,
		EventCategoryAIIngestor,
		EventCategoryCurated,
		EventCategoryToolInvocation,
		EventCategoryActions,
		EventCategoryEpisodic,
	}
}

// IsValid checks if the event category is a known bucket
func (c EventCategory) IsValid() bool {
	for _, known := range AllEventCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the event category
func (c EventCategory) String() string {
	return string(c)
}
