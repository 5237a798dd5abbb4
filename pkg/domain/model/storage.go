package model

import (
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// PathRef addresses one logical location in a profile's storage. Category
// picks the top-level bucket; Subcategory and RelPath are optional
// refinements below it. Username selects the profile scope.
type PathRef struct {
	Username    string                `json:"username"`
	Category    types.StorageCategory `json:"category"`
	Subcategory string                `json:"subcategory,omitempty"`
	RelPath     string                `json:"rel_path,omitempty"`
}

// WriteResult reports the outcome of a storage write
type WriteResult struct {
	Path         string            `json:"path"`
	BytesWritten int               `json:"bytes_written"`
	StorageType  types.StorageType `json:"storage_type"`
	Encrypted    bool              `json:"encrypted"`
}
