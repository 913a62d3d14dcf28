package transaction

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestNewAssignsDistinctIDs(t *testing.T) {
	a := New(OpFind, "people")
	b := New(OpInsert, "people")

	assert.Assert(t, a.ID != b.ID)
	assert.Assert(t, b.Seq > a.Seq)
	_, err := uuid.Parse(a.ID)
	assert.NilError(t, err)
}

func TestMutating(t *testing.T) {
	for _, op := range []OpType{OpInsert, OpDelete, OpUpdate} {
		assert.Assert(t, op.Mutating(), op)
	}
	for _, op := range []OpType{OpLoad, OpFind, OpJoin, OpHaving, OpOrderBy} {
		assert.Assert(t, !op.Mutating(), op)
	}
}
