package types

import "fmt"

// WorkOp identifies an operation dispatched to the memory workers. The set
// is closed: an envelope carrying anything else is rejected before dispatch.
type WorkOp string

const (
	OpEventWrite  WorkOp = "event.write"
	OpEventRead   WorkOp = "event.read"
	OpEventSearch WorkOp = "event.search"
	OpEventList   WorkOp = "event.list"

	OpIndexBuild  WorkOp = "index.build"
	OpIndexQuery  WorkOp = "index.query"
	OpIndexAppend WorkOp = "index.append"
	OpIndexStatus WorkOp = "index.status"
	OpIndexEmbed  WorkOp = "index.embed"

	OpStorageStatus WorkOp = "storage.status"
)

// AllWorkOps returns all dispatchable operations
func AllWorkOps() []WorkOp {
	return []WorkOp{
		OpEventWrite,
		OpEventRead,
		OpEventSearch,
		OpEventList,
		OpIndexBuild,
		OpIndexQuery,
		OpIndexAppend,
		OpIndexStatus,
		OpIndexEmbed,
		OpStorageStatus,
	}
}

// IsValid checks if the operation is dispatchable
func (o WorkOp) IsValid() bool {
	for _, known := range AllWorkOps() {
		if o == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the operation
func (o WorkOp) String() string {
	return string(o)
}

// ParseWorkOp parses a string into a WorkOp
func ParseWorkOp(s string) (WorkOp, error) {
	op := WorkOp(s)
	if !op.IsValid() {
		return "", fmt.Errorf("invalid work operation: %s", s)
	}
	return op, nil
}
