// Package projection describes the result columns of a report as a list of
// keyed entries (an aggregation over a table column, or an expression). The
// same entry list builds the SELECT clause and decodes the result rows, so a
// column can only be read back under the key it was registered with.
package projection

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Aggregation is the function applied to a source column.
type Aggregation int

const (
	// None selects the column as is.
	None Aggregation = iota
	Min
	Max
	Sum
	Avg
	// Count counts the rows.
	Count
	// CountIfTrue counts the rows in which a boolean column is true.
	CountIfTrue
)

var aggregationNames = [...]string{"none", "min", "max", "sum", "avg", "count", "countif_true"}

func (a Aggregation) String() string {
	if a < None || a > CountIfTrue {
		return fmt.Sprintf("Aggregation(%d)", int(a))
	}
	return aggregationNames[a]
}

// Key derives the output column name for column aggregated with agg.
func Key(agg Aggregation, column string) string {
	if agg == None {
		return column
	}
	return agg.String() + "_" + column
}

// Ref returns the table qualified name of a column.
func Ref(table, column string) string {
	return table + "." + column
}

var keyPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type entry struct {
	key  string
	expr squirrel.Sqlizer
}

// Projection is an ordered set of result columns. It is built once, frozen,
// and then shared read-only between queries.
type Projection struct {
	entries []entry
	index   map[string]int
	frozen  bool
}

// New returns an empty projection.
func New() *Projection {
	return &Projection{index: make(map[string]int)}
}

// Put registers column of table aggregated with agg and returns its key.
func (p *Projection) Put(agg Aggregation, table, column string) string {
	return p.add(Key(agg, column), aggregate(agg, Ref(table, column)))
}

// PutAs registers a plain column of table under key.
func (p *Projection) PutAs(key, table, column string) string {
	return p.add(key, squirrel.Expr(Ref(table, column)))
}

// PutExpr registers an arbitrary expression under key. Values must be passed
// as bound arguments of expr.
func (p *Projection) PutExpr(key string, expr squirrel.Sqlizer) string {
	return p.add(key, expr)
}

func aggregate(agg Aggregation, ref string) squirrel.Sqlizer {
	switch agg {
	case None:
		return squirrel.Expr(ref)
	case Min, Max, Sum, Avg, Count:
		return squirrel.Expr(fmt.Sprintf("%s(%s)", strings.ToUpper(agg.String()), ref))
	case CountIfTrue:
		return squirrel.Expr(fmt.Sprintf("COUNT(CASE WHEN %s = ? THEN 1 END)", ref), true)
	}
	panic(fmt.Sprintf("projection: unsupported aggregation %v", agg))
}

func (p *Projection) add(key string, expr squirrel.Sqlizer) string {
	if p.frozen {
		panic(fmt.Sprintf("projection: cannot add %q to a frozen projection", key))
	}
	if !keyPattern.MatchString(key) {
		panic(fmt.Sprintf("projection: invalid column key %q", key))
	}
	if _, dup := p.index[key]; dup {
		panic(fmt.Sprintf("projection: column %q registered twice", key))
	}
	p.index[key] = len(p.entries)
	p.entries = append(p.entries, entry{key: key, expr: expr})
	return key
}

// Freeze makes the projection read-only and returns it.
func (p *Projection) Freeze() *Projection {
	p.frozen = true
	return p
}

// Len returns the number of registered columns.
func (p *Projection) Len() int {
	return len(p.entries)
}

// Has reports whether key is registered.
func (p *Projection) Has(key string) bool {
	_, ok := p.index[key]
	return ok
}

// Keys returns the registered keys in select order.
func (p *Projection) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.key
	}
	return keys
}

// Select starts a SELECT whose result columns are exactly the registered
// entries, in registration order.
func (p *Projection) Select(b squirrel.StatementBuilderType) squirrel.SelectBuilder {
	sb := b.Select()
	for _, e := range p.entries {
		sb = sb.Column(squirrel.Alias(e.expr, e.key))
	}
	return sb
}

// Scan reads the current row of a query built with Select.
func (p *Projection) Scan(scanner squirrel.RowScanner) (*Row, error) {
	values := make([]any, len(p.entries))
	dest := make([]any, len(p.entries))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	return &Row{p: p, values: values}, nil
}
