package planner

import (
	"log/slog"
	"slices"

	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/query/indexing"
)

// AccessPath picks the index to answer an equality predicate binding columns.
// A fully bound primary key wins outright; otherwise the most selective
// fully bound index is chosen, ties going to the first registered.
// nil means a full scan.
func AccessPath(indexes *indexing.Set, columns []string) *indexing.Index {
	bound := func(c string) bool { return slices.Contains(columns, c) }

	if pk := indexes.Primary(); pk != nil && pk.Def.Covers(bound) {
		return pk
	}

	var best *indexing.Index
	for _, idx := range indexes.All() {
		if idx.Def.Kind == schema.IndexPrimary || !idx.Def.Covers(bound) {
			continue
		}
		if best == nil || idx.Selectivity() > best.Selectivity() {
			best = idx
		}
	}
	return best
}

// Selectivity is the selectivity of the access path for columns, 0 for a scan
func Selectivity(indexes *indexing.Set, columns []string) (float64, *indexing.Index) {
	idx := AccessPath(indexes, columns)
	if idx == nil {
		return 0, nil
	}
	return idx.Selectivity(), idx
}

// JoinRoles decides which side of an equi-join is scanned and which is
// probed. The less selective side is scanned; the more selective side is
// probed repeatedly. Ties keep the left side as the scan side.
func JoinRoles(left, right *indexing.Set, on []string) (swap bool) {
	leftSel, leftIdx := Selectivity(left, on)
	rightSel, rightIdx := Selectivity(right, on)

	swap = leftSel > rightSel

	probe := rightIdx
	if swap {
		probe = leftIdx
	}
	if probe != nil {
		slog.Debug("join probe index chosen",
			slog.String("index", probe.Name()),
			slog.Float64("selectivity", probe.Selectivity()),
			slog.Bool("swapped", swap),
		)
	} else {
		slog.Debug("join probe side has no usable index; probing by scan", slog.Bool("swapped", swap))
	}
	return swap
}
