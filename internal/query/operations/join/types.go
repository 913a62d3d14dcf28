package join

import (
	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/table"
)

// Options describes an equi-join
type Options struct {
	On     []string    // columns that must be equal on both sides
	Where  data.Values // equality prefilter; each column is routed to the side declaring it
	Fields []string    // projection of the output; nil keeps every column
}

// roles assigns the scanned and probed sides of a join
type roles struct {
	scan, probe *table.Table
	swapped     bool
}

// split routes each where column to every side declaring it
func (r roles) split(where data.Values) (scanWhere, probeWhere data.Values) {
	scanWhere, probeWhere = data.Values{}, data.Values{}
	for c, v := range where {
		if r.scan.HasColumn(c) {
			scanWhere[c] = v
		}
		if r.probe.HasColumn(c) {
			probeWhere[c] = v
		}
	}
	return scanWhere, probeWhere
}
