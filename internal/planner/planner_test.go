package planner

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/query/indexing"
	"github.com/leengari/csvdb/internal/storage/rowstore"
)

func buildSet(t *testing.T, defs ...schema.IndexDefinition) *indexing.Set {
	t.Helper()
	s := rowstore.New()
	for i, team := range []string{"BOS", "BOS", "NYA", "NYA"} {
		s.Append(data.NewRow(
			data.Field{Column: "id", Value: data.Int(int64(i))},
			data.Field{Column: "team", Value: data.Text(team)},
			data.Field{Column: "year", Value: data.Int(int64(2000 + i))},
		))
	}
	set, err := indexing.BuildSet("t", defs, s, indexing.BuildOptions{})
	assert.NilError(t, err)
	return set
}

var (
	pk     = schema.IndexDefinition{Name: schema.PrimaryIndexName, Kind: schema.IndexPrimary, Columns: []string{"id"}}
	byTeam = schema.IndexDefinition{Name: "team_idx", Kind: schema.IndexPlain, Columns: []string{"team"}}
	byYear = schema.IndexDefinition{Name: "year_idx", Kind: schema.IndexPlain, Columns: []string{"year"}}
)

func TestAccessPathPrefersPrimary(t *testing.T) {
	set := buildSet(t, byYear, pk)

	idx := AccessPath(set, []string{"year", "id"})
	assert.Equal(t, idx.Name(), schema.PrimaryIndexName)
}

func TestAccessPathPicksMostSelective(t *testing.T) {
	set := buildSet(t, byTeam, byYear)

	idx := AccessPath(set, []string{"team", "year"})
	assert.Equal(t, idx.Name(), "year_idx")
}

func TestAccessPathTieGoesToFirstRegistered(t *testing.T) {
	other := schema.IndexDefinition{Name: "team_idx2", Kind: schema.IndexPlain, Columns: []string{"team"}}
	set := buildSet(t, byTeam, other)

	idx := AccessPath(set, []string{"team"})
	assert.Equal(t, idx.Name(), "team_idx")
}

func TestAccessPathNoIndex(t *testing.T) {
	set := buildSet(t, byTeam)

	assert.Assert(t, AccessPath(set, []string{"year"}) == nil)
	sel, _ := Selectivity(set, []string{"year"})
	assert.Equal(t, sel, 0.0)
}

func TestJoinRolesScansLessSelectiveSide(t *testing.T) {
	withPK := buildSet(t, pk)
	withoutPK := buildSet(t)

	assert.Assert(t, JoinRoles(withPK, withoutPK, []string{"id"}), "left is more selective so it should probe")
	assert.Assert(t, !JoinRoles(withoutPK, withPK, []string{"id"}))
	assert.Assert(t, !JoinRoles(withPK, withPK, []string{"id"}), "ties keep left as scan side")
}

func TestEstimateAccess(t *testing.T) {
	set := buildSet(t, pk, byTeam)

	est := EstimateAccess(set, []string{"team"}, 4)
	assert.DeepEqual(t, est, Estimate{Access: "index", Index: "team_idx", Selectivity: 0.5, Rows: 2})

	est = EstimateAccess(set, []string{"id", "team"}, 4)
	assert.Equal(t, est.Index, schema.PrimaryIndexName)
	assert.Equal(t, est.Rows, 1)

	est = EstimateAccess(set, []string{"year"}, 4)
	assert.DeepEqual(t, est, Estimate{Access: "scan", Rows: 4})

	est = EstimateAccess(set, nil, 4)
	assert.Equal(t, est.Access, "scan")
}
