package rowstore

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/leengari/csvdb/internal/domain/data"
)

// Store is an append-only arena of row slots addressed by rownum.
// Deleted slots stay in place and are marked in a tombstone bitmap, so the
// rownum of every other row keeps pointing at the same slot.
type Store struct {
	slots []*data.Row
	dead  *roaring.Bitmap
}

func New() *Store {
	return &Store{dead: roaring.New()}
}

// Append stores row under the next unused rownum and returns it
func (s *Store) Append(row *data.Row) int {
	n := len(s.slots)
	row.Rownum = n
	s.slots = append(s.slots, row)
	return n
}

// Get returns the live row stored under n
func (s *Store) Get(n int) (*data.Row, bool) {
	if n < 0 || n >= len(s.slots) || s.dead.Contains(uint32(n)) {
		return nil, false
	}
	return s.slots[n], true
}

// Tombstone marks n as deleted and reports whether it held a live row.
// The slot is never reused.
func (s *Store) Tombstone(n int) bool {
	if n < 0 || n >= len(s.slots) || s.dead.Contains(uint32(n)) {
		return false
	}
	s.dead.Add(uint32(n))
	s.slots[n] = nil
	return true
}

func (s *Store) IsDead(n int) bool {
	return s.dead.Contains(uint32(n))
}

// Len is the number of slots ever allocated, tombstones included
func (s *Store) Len() int { return len(s.slots) }

// LogicalCount is the number of live rows
func (s *Store) LogicalCount() int {
	return len(s.slots) - int(s.dead.GetCardinality())
}

// Live calls fn for every live row in rownum order until fn returns false
func (s *Store) Live(fn func(row *data.Row) bool) {
	for n, row := range s.slots {
		if row == nil || s.dead.Contains(uint32(n)) {
			continue
		}
		if !fn(row) {
			return
		}
	}
}

// LiveRownums returns the rownums of live rows as a bitmap
func (s *Store) LiveRownums() *roaring.Bitmap {
	bm := roaring.New()
	if len(s.slots) > 0 {
		bm.AddRange(0, uint64(len(s.slots)))
		bm.AndNot(s.dead)
	}
	return bm
}

// FileOrder maps the i-th data line of the backing file to its rownum.
// The file holds exactly the live rows, in rownum order.
func (s *Store) FileOrder() []int {
	order := make([]int, 0, s.LogicalCount())
	for n := range s.slots {
		if !s.dead.Contains(uint32(n)) {
			order = append(order, n)
		}
	}
	return order
}
