package audit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/safe"
)

// SlogSink emits audit records as structured log entries. This is the
// default sink.
type SlogSink struct{}

// NewSlogSink creates a sink writing to the context logger
func NewSlogSink() *SlogSink {
	return &SlogSink{}
}

// Emit logs the record
func (s *SlogSink) Emit(ctx context.Context, rec *model.AuditRecord) {
	logging.From(ctx).Info("storage audit",
		"audit_id", string(rec.ID),
		"op", string(rec.Op),
		"username", rec.Username,
		"category", rec.Category.String(),
		"subcategory", rec.Subcategory,
		"path", rec.Path,
		"bytes", rec.Bytes,
		"storage_type", rec.StorageType.String(),
		"encrypted", rec.Encrypted,
		"error", rec.Error,
	)
}

// FileSink appends audit records to a JSONL file, one record per line.
// Write failures are logged and swallowed: auditing never fails the storage
// operation it observes.
type FileSink struct {
	path  string
	mutex sync.Mutex
}

// NewFileSink creates a JSONL sink, creating parent directories as needed
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create audit log directory", goerr.V("path", path))
	}
	return &FileSink{path: path}, nil
}

// Emit appends one JSON line
func (s *FileSink) Emit(ctx context.Context, rec *model.AuditRecord) {
	line, err := json.Marshal(rec)
	if err != nil {
		logging.From(ctx).Error("failed to marshal audit record", "error", err)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		logging.From(ctx).Error("failed to open audit log", "path", s.path, "error", err)
		return
	}
	defer safe.Close(ctx, f)

	if _, err := f.Write(append(line, '\n')); err != nil {
		logging.From(ctx).Error("failed to append audit record", "path", s.path, "error", err)
	}
}

// MultiSink fans one record out to several sinks
type MultiSink struct {
	sinks []interfaces.AuditSink
}

// NewMultiSink combines sinks; records are delivered in order
func NewMultiSink(sinks ...interfaces.AuditSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit delivers the record to every sink
func (s *MultiSink) Emit(ctx context.Context, rec *model.AuditRecord) {
	for _, sink := range s.sinks {
		sink.Emit(ctx, rec)
	}
}
