package interfaces

import (
	"context"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
)

// AuditSink receives storage mutation records. A sink failure is logged by
// the sink itself and never fails the storage operation that emitted the
// record.
type AuditSink interface {
	Emit(ctx context.Context, rec *model.AuditRecord)
}
