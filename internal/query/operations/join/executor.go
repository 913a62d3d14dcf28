package join

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"

	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/planner"
	"github.com/leengari/csvdb/internal/query/operations"
	"github.com/leengari/csvdb/internal/query/operations/projection"
)

// Execute performs an inner equi-join of left and right on opts.On and
// returns the result as a derived table.
//
// The side whose index on the join columns is less selective is scanned;
// each scan row then probes the other side through its best index. Output
// rows are sorted by the join columns and renumbered from zero.
func Execute(left, right *table.Table, opts Options) (*table.Table, error) {
	left.RLock()
	defer left.RUnlock()
	if right != left {
		right.RLock()
		defer right.RUnlock()
	}

	opts.On = projection.Normalize(opts.On)
	opts.Fields = projection.Normalize(opts.Fields)
	opts.Where = opts.Where.Normalize()
	if err := validateJoin(left, right, opts); err != nil {
		return nil, err
	}

	start := time.Now()
	r := roles{scan: left, probe: right}
	if planner.JoinRoles(left.Indexes, right.Indexes, opts.On) {
		r = roles{scan: right, probe: left, swapped: true}
	}

	// Prefilter each side with its part of the where template
	scanWhere, probeWhere := r.split(opts.Where)
	scanRows, err := operations.Match(r.scan, scanWhere, nil, false)
	if err != nil {
		return nil, err
	}
	var candidates *roaring.Bitmap
	if len(probeWhere) > 0 {
		probeRows, err := operations.Match(r.probe, probeWhere, nil, false)
		if err != nil {
			return nil, err
		}
		candidates = roaring.New()
		for _, pr := range probeRows {
			candidates.Add(uint32(pr.Rownum))
		}
	}

	var rows []*data.Row
	for _, sr := range scanRows {
		tmpl, ok := probeTemplate(sr, opts.On)
		if !ok {
			continue
		}
		matches, err := operations.Match(r.probe, tmpl, candidates, false)
		if err != nil {
			return nil, err
		}
		for _, pr := range matches {
			rows = append(rows, mergeRows(sr, pr, opts.On))
		}
	}

	// Stable order by the join columns, then project
	slices.SortStableFunc(rows, compareOn(opts.On))
	rows = projection.Apply(rows, opts.Fields)

	columns := outputColumns(r, opts.Fields)
	name := r.scan.Name + "_" + r.probe.Name + "_" + strings.Join(opts.On, "_")
	out, err := operations.Derive(name, columns, rows, carryIndexes(r, columns))
	if err != nil {
		return nil, err
	}

	slog.Info("join complete",
		slog.String("scan", r.scan.Name),
		slog.String("probe", r.probe.Name),
		slog.Bool("swapped", r.swapped),
		slog.Int("scan_rows", len(scanRows)),
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}
