package rowstore

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/data"
)

func row(id int64) *data.Row {
	return data.NewRow(data.Field{Column: "id", Value: data.Int(id)})
}

func TestAppendAssignsSequentialRownums(t *testing.T) {
	s := New()
	assert.Equal(t, s.Append(row(10)), 0)
	assert.Equal(t, s.Append(row(11)), 1)
	assert.Equal(t, s.Append(row(12)), 2)

	r, ok := s.Get(1)
	assert.Assert(t, ok)
	assert.Equal(t, r.Rownum, 1)
	assert.Assert(t, r.Value("id").Equal(data.Int(11)))
}

func TestTombstoneKeepsOtherRownums(t *testing.T) {
	s := New()
	for i := range 4 {
		s.Append(row(int64(i)))
	}

	assert.Assert(t, s.Tombstone(1))

	_, ok := s.Get(1)
	assert.Assert(t, !ok)
	assert.Assert(t, s.IsDead(1))
	assert.Equal(t, s.Len(), 4)
	assert.Equal(t, s.LogicalCount(), 3)

	r, ok := s.Get(2)
	assert.Assert(t, ok)
	assert.Assert(t, r.Value("id").Equal(data.Int(2)))

	// rownums are never reused
	assert.Equal(t, s.Append(row(99)), 4)
	assert.DeepEqual(t, s.FileOrder(), []int{0, 2, 3, 4})
}

func TestLiveSkipsTombstones(t *testing.T) {
	s := New()
	for i := range 3 {
		s.Append(row(int64(i)))
	}
	assert.Assert(t, s.Tombstone(0))

	var seen []int
	s.Live(func(r *data.Row) bool {
		seen = append(seen, r.Rownum)
		return true
	})
	assert.DeepEqual(t, seen, []int{1, 2})
	assert.DeepEqual(t, s.LiveRownums().ToArray(), []uint32{1, 2})
}

func TestTombstoneOnlyRemovesLiveRows(t *testing.T) {
	s := New()
	s.Append(row(0))

	assert.Assert(t, !s.Tombstone(3), "out of range")
	assert.Assert(t, !s.Tombstone(-1))
	assert.Assert(t, s.Tombstone(0))
	assert.Assert(t, !s.Tombstone(0), "already dead")
	assert.Equal(t, s.LogicalCount(), 0)
}
