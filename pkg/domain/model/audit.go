package model

import (
	"time"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/oklog/ulid/v2"
)

// AuditOp is the kind of storage mutation being audited
type AuditOp string

const (
	AuditStorageWrite       AuditOp = "storage_write"
	AuditStorageWriteFailed AuditOp = "storage_write_failed"
	AuditStorageDelete      AuditOp = "storage_delete"
)

// AuditRecordID is a ULID, so records sort by emission time
type AuditRecordID string

// NewAuditRecordID generates a new time-ordered AuditRecordID
func NewAuditRecordID() AuditRecordID {
	return AuditRecordID(ulid.Make().String())
}

// AuditRecord describes one storage mutation. Every write, failed write and
// effective delete emits exactly one record to the configured sink.
type AuditRecord struct {
	ID          AuditRecordID         `json:"id"`
	Time        time.Time             `json:"time"`
	Op          AuditOp               `json:"op"`
	Username    string                `json:"username"`
	Category    types.StorageCategory `json:"category"`
	Subcategory string                `json:"subcategory,omitempty"`
	Path        string                `json:"path"`
	Bytes       int                   `json:"bytes"`
	StorageType types.StorageType     `json:"storage_type"`
	Encrypted   bool                  `json:"encrypted"`
	Error       string                `json:"error,omitempty"`
}

// NewAuditRecord creates a record stamped with a fresh ID and current time
func NewAuditRecord(op AuditOp) *AuditRecord {
	return &AuditRecord{
		ID:   NewAuditRecordID(),
		Time: time.Now().UTC(),
		Op:   op,
	}
}
