package projection

import (
	"github.com/leengari/csvdb/internal/domain/data"
)

// Apply projects every row onto fields, returning fresh copies.
// If fields is nil each row is copied whole.
func Apply(rows []*data.Row, fields []string) []*data.Row {
	out := make([]*data.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Project(fields)
	}
	return out
}
