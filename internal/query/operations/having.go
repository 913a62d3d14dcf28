package operations

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
)

const havingUsage = "usage: having('<column> = <value>', 'yearid >= 2000', ...)"

var operatorRun = regexp.MustCompile(`[!<>=]+`)

// Comparator tests a stored value against a condition literal
type Comparator func(v, literal data.Value) bool

var comparators = map[string]Comparator{
	"=":  func(v, l data.Value) bool { return v.Equal(l) },
	"!=": func(v, l data.Value) bool { return !v.Equal(l) },
	"<":  func(v, l data.Value) bool { return v.Compare(l) < 0 },
	"<=": func(v, l data.Value) bool { return v.Compare(l) <= 0 },
	">":  func(v, l data.Value) bool { return v.Compare(l) > 0 },
	">=": func(v, l data.Value) bool { return v.Compare(l) >= 0 },
}

// Condition is one parsed having predicate
type Condition struct {
	Column   string
	Operator string
	Literal  data.Value
	compare  Comparator
}

// Holds reports whether row satisfies the condition. Null never does.
func (c Condition) Holds(row *data.Row) bool {
	v := row.Value(c.Column)
	if v.IsNull() {
		return false
	}
	return c.compare(v, c.Literal)
}

// ParseCondition parses "<column> <op> <literal>" against t's schema
func ParseCondition(t *table.Table, cond string) (Condition, error) {
	invalid := func(reason string) error {
		return dberrors.New(dberrors.KindInvalidOperation, t.Name,
			"invalid condition %q: %s; supported operators: = != < <= > >=; %s", cond, reason, havingUsage)
	}

	runs := operatorRun.FindAllStringIndex(cond, -1)
	if len(runs) != 1 {
		return Condition{}, invalid("expected exactly one operator")
	}
	start, end := runs[0][0], runs[0][1]
	column := schema.NormalizeName(cond[:start])
	op := cond[start:end]
	raw := strings.TrimSpace(cond[end:])

	compare, ok := comparators[op]
	if !ok {
		return Condition{}, invalid(fmt.Sprintf("unknown operator %q", op))
	}
	if column == "" || raw == "" {
		return Condition{}, invalid("missing operand")
	}
	col, ok := t.Column(column)
	if !ok {
		return Condition{}, dberrors.NewUnknownColumn(t.Name, column, "condition")
	}

	var literal data.Value
	if col.Type == schema.ColumnTypeNumber {
		n, err := data.ParseNumber(raw)
		if err != nil {
			return Condition{}, invalid(fmt.Sprintf("%q is not a number", raw))
		}
		literal = n
	} else {
		literal = data.Text(unquote(raw))
	}

	return Condition{Column: column, Operator: op, Literal: literal, compare: compare}, nil
}

// Having returns a derived table holding the rows of t that satisfy every
// condition. With no conditions t itself is returned.
func Having(t *table.Table, conds ...string) (*table.Table, error) {
	if len(conds) == 0 {
		return t, nil
	}

	t.RLock()
	defer t.RUnlock()

	parsed := make([]Condition, len(conds))
	names := make([]string, len(conds))
	for i, c := range conds {
		p, err := ParseCondition(t, c)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
		names[i] = p.Column
	}

	var rows []*data.Row
	t.Store.Live(func(r *data.Row) bool {
		for _, c := range parsed {
			if !c.Holds(r) {
				return true
			}
		}
		rows = append(rows, r.Copy())
		return true
	})

	name := t.Name + "_having_" + strings.Join(names, "_")
	return Derive(name, t.Def.Columns, rows, carriedIndexes(t, t.Def.Columns))
}

func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '\'' || q == '"') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
