package engine

import (
	"time"

	"github.com/leengari/csvdb/internal/domain/transaction"
)

// EventType represents a lifecycle phase of a table operation
type EventType string

const (
	EventOpStart       EventType = "op_start"
	EventOpEnd         EventType = "op_end"
	EventOpError       EventType = "op_error"
	EventIndexProgress EventType = "index_progress"
)

// Event represents a lifecycle event of one engine operation
type Event struct {
	Type      EventType          // Type of event
	OpID      string             // Operation ID for tracing
	Seq       uint64             // Process-wide operation sequence number
	Op        transaction.OpType // Operation kind
	Table     string             // Table the operation runs against
	Timestamp time.Time          // When the event occurred
	Data      any                // Phase-specific data (IndexProgress, OpResult or error)
}

// IndexProgress is the Data of an EventIndexProgress event
type IndexProgress struct {
	Index string
	Done  int
	Total int
}

// OpResult is the Data of an EventOpEnd event
type OpResult struct {
	Rows    int   // rows returned or affected
	Rownums []int // rownums assigned by an insert
	Elapsed time.Duration
}

// Observer interface for event subscribers
// Observers receive events at major execution phases
type Observer interface {
	OnEvent(event Event)
}
