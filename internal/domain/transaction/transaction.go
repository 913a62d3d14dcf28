package transaction

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// seqCounter is an atomic counter giving operations a cheap ordering
var seqCounter uint64

// OpType names the public table operation being run
type OpType string

const (
	OpLoad    OpType = "LOAD"
	OpFind    OpType = "FIND"
	OpInsert  OpType = "INSERT"
	OpDelete  OpType = "DELETE"
	OpUpdate  OpType = "UPDATE"
	OpJoin    OpType = "JOIN"
	OpHaving  OpType = "HAVING"
	OpOrderBy OpType = "ORDER_BY"
)

// Mutating reports whether the operation rewrites the backing file
func (o OpType) Mutating() bool {
	return o == OpInsert || o == OpDelete || o == OpUpdate
}

// Operation identifies one call into the engine for logging and observers.
// There is no rollback: a mutation either fully succeeds or returns an error.
type Operation struct {
	ID        string    // UUID used to correlate log lines and events
	Seq       uint64    // process-wide sequence number
	Type      OpType    // operation kind
	Table     string    // table the operation runs against
	StartTime time.Time // when the operation began
	Rownums   []int     // rownums assigned by an insert
}

// New starts a new operation with a unique ID
func New(op OpType, table string) *Operation {
	return &Operation{
		ID:        uuid.New().String(),
		Seq:       atomic.AddUint64(&seqCounter, 1),
		Type:      op,
		Table:     table,
		StartTime: time.Now(),
	}
}

// Elapsed returns the time since the operation began
func (op *Operation) Elapsed() time.Duration {
	return time.Since(op.StartTime)
}
