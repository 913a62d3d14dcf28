package planner

import (
	"github.com/leengari/csvdb/internal/query/indexing"
)

// Estimate describes how an equality predicate would be answered
type Estimate struct {
	Access      string  `json:"access"`          // "index" or "scan"
	Index       string  `json:"index,omitempty"` // chosen index, empty for a scan
	Selectivity float64 `json:"selectivity"`
	Rows        int     `json:"estimated_rows"`
}

// EstimateAccess estimates the access path and result size of a predicate
// binding columns over a table of liveRows rows. An index is assumed to
// spread its entries evenly over its distinct keys.
func EstimateAccess(indexes *indexing.Set, columns []string, liveRows int) Estimate {
	if len(columns) == 0 {
		return Estimate{Access: "scan", Rows: liveRows}
	}
	idx := AccessPath(indexes, columns)
	if idx == nil {
		return Estimate{Access: "scan", Rows: liveRows}
	}
	return Estimate{
		Access:      "index",
		Index:       idx.Name(),
		Selectivity: idx.Selectivity(),
		Rows:        estimateRowCount(idx),
	}
}

func estimateRowCount(idx *indexing.Index) int {
	if idx.Distinct() == 0 {
		return 0
	}
	// round up so a non-empty bucket never estimates to zero
	return (idx.Entries() + idx.Distinct() - 1) / idx.Distinct()
}
