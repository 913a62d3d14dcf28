package indexing

import (
	"slices"
	"sort"

	"github.com/google/btree"

	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/schema"
)

const btreeDegree = 32

type bucket struct {
	key     string
	rownums []int // ascending
}

func bucketLess(a, b *bucket) bool { return a.key < b.key }

// Index maps encoded composite keys to the rownums sharing that key.
// Buckets live in a B-tree so iteration order is deterministic.
type Index struct {
	Def         schema.IndexDefinition
	Generated   bool // prefix index derived from a composite primary key
	buckets     *btree.BTreeG[*bucket]
	entries     int
	selectivity float64
}

func newIndex(def schema.IndexDefinition) *Index {
	return &Index{
		Def:         def,
		buckets:     btree.NewG[*bucket](btreeDegree, bucketLess),
		selectivity: 1.0,
	}
}

func (idx *Index) Name() string      { return idx.Def.Name }
func (idx *Index) Columns() []string { return idx.Def.Columns }

// Selectivity is distinct keys divided by logical rows, as last recomputed
func (idx *Index) Selectivity() float64 { return idx.selectivity }

// Distinct is the number of distinct keys
func (idx *Index) Distinct() int { return idx.buckets.Len() }

// Entries is the number of indexed rownums
func (idx *Index) Entries() int { return idx.entries }

// Key encodes src under the index columns; ok is false if a column is absent
func (idx *Index) Key(src data.Getter) (string, bool) {
	return data.EncodeKey(src, idx.Def.Columns)
}

// Lookup returns the rownums stored under key. The slice must not be modified.
func (idx *Index) Lookup(key string) []int {
	b, ok := idx.buckets.Get(&bucket{key: key})
	if !ok {
		return nil
	}
	return b.rownums
}

// LookupRow returns the rownums sharing src's key
func (idx *Index) LookupRow(src data.Getter) []int {
	key, ok := idx.Key(src)
	if !ok {
		return nil
	}
	return idx.Lookup(key)
}

// Insert adds rownum under row's key. Rows missing a key column are skipped.
func (idx *Index) Insert(rownum int, row data.Getter) {
	key, ok := idx.Key(row)
	if !ok {
		return
	}
	b, found := idx.buckets.Get(&bucket{key: key})
	if !found {
		idx.buckets.ReplaceOrInsert(&bucket{key: key, rownums: []int{rownum}})
		idx.entries++
		return
	}
	i := sort.SearchInts(b.rownums, rownum)
	if i < len(b.rownums) && b.rownums[i] == rownum {
		return
	}
	b.rownums = slices.Insert(b.rownums, i, rownum)
	idx.entries++
}

// Remove drops rownum from row's key, deleting the bucket once empty
func (idx *Index) Remove(rownum int, row data.Getter) {
	key, ok := idx.Key(row)
	if !ok {
		return
	}
	b, found := idx.buckets.Get(&bucket{key: key})
	if !found {
		return
	}
	i := sort.SearchInts(b.rownums, rownum)
	if i == len(b.rownums) || b.rownums[i] != rownum {
		return
	}
	b.rownums = slices.Delete(b.rownums, i, i+1)
	idx.entries--
	if len(b.rownums) == 0 {
		idx.buckets.Delete(b)
	}
}

// RecomputeSelectivity refreshes the distinct/logical ratio. An empty
// table is treated as perfectly selective.
func (idx *Index) RecomputeSelectivity(logical int) {
	if logical == 0 {
		idx.selectivity = 1.0
		return
	}
	idx.selectivity = float64(idx.buckets.Len()) / float64(logical)
}

// Duplicate returns the first key held by more than one row, if any
func (idx *Index) Duplicate() (key string, rownums []int, found bool) {
	idx.buckets.Ascend(func(b *bucket) bool {
		if len(b.rownums) > 1 {
			key, rownums, found = b.key, b.rownums, true
			return false
		}
		return true
	})
	return key, rownums, found
}
