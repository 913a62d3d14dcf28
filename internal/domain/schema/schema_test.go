package schema

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
)

func validDef() *TableDefinition {
	return &TableDefinition{
		Name: "batting",
		Path: "batting.CSV",
		Columns: []ColumnDefinition{
			{Name: " PlayerID ", Type: ColumnTypeText, NotNull: true},
			{Name: "yearID", Type: "NUMBER"},
			{Name: "teamID", Type: " Text"},
		},
		Indexes: []IndexDefinition{
			{Name: "whatever", Kind: "primary", Columns: []string{"PLAYERID", "yearid"}},
		},
	}
}

func TestValidateNormalizes(t *testing.T) {
	def := validDef()
	assert.NilError(t, def.Validate())

	assert.DeepEqual(t, def.ColumnNames(), []string{"playerid", "yearid", "teamid"})
	assert.Equal(t, def.Columns[1].Type, ColumnTypeNumber)
	assert.Equal(t, def.Columns[2].Type, ColumnTypeText)
	pk, ok := def.Primary()
	assert.Assert(t, ok)
	assert.Equal(t, pk.Name, PrimaryIndexName)
	assert.Equal(t, pk.Kind, IndexPrimary)
	assert.DeepEqual(t, pk.Columns, []string{"playerid", "yearid"})
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *TableDefinition)
		want   error
	}{
		{"path without csv suffix", func(d *TableDefinition) { d.Path = "batting.txt" }, dberrors.ErrInvalidFile},
		{"bad column type", func(d *TableDefinition) { d.Columns[1].Type = "date" }, dberrors.ErrInvalidColumnDefinition},
		{"duplicate column", func(d *TableDefinition) { d.Columns[1].Name = "playerid" }, dberrors.ErrInvalidColumnDefinition},
		{"bad index kind", func(d *TableDefinition) { d.Indexes[0].Kind = "HASH" }, dberrors.ErrInvalidColumnDefinition},
		{"index on unknown column", func(d *TableDefinition) { d.Indexes[0].Columns = []string{"teamid"} }, dberrors.ErrInvalidColumnDefinition},
		{"two primary keys", func(d *TableDefinition) {
			d.Indexes = append(d.Indexes, IndexDefinition{Name: "p2", Kind: IndexPrimary, Columns: []string{"yearid"}})
		}, dberrors.ErrInvalidColumnDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDef()
			tt.mutate(def)
			assert.Assert(t, errors.Is(def.Validate(), tt.want))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	def := validDef()
	c := def.Clone()
	c.Columns[0].Name = "changed"
	c.Indexes[0].Columns[0] = "changed"

	assert.Equal(t, def.Columns[0].Name, " PlayerID ")
	assert.Equal(t, def.Indexes[0].Columns[0], "PLAYERID")
}

func TestPrefixIndexes(t *testing.T) {
	pk := IndexDefinition{Name: PrimaryIndexName, Kind: IndexPrimary, Columns: []string{"a", "b", "c"}}

	got := PrefixIndexes(pk, nil)
	assert.DeepEqual(t, got, []IndexDefinition{
		{Name: "a_idx", Kind: IndexPlain, Columns: []string{"a"}},
		{Name: "a_b_idx", Kind: IndexPlain, Columns: []string{"a", "b"}},
	})

	got = PrefixIndexes(pk, []IndexDefinition{{Name: "mine", Kind: IndexUnique, Columns: []string{"a"}}})
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].Name, "a_b_idx")
}
