package sqlast

import (
	"fmt"
	"strings"
	"time"
)

// renderer accumulates flattened join clauses and parameter values while
// walking expression trees. One renderer serves one statement, so
// parameter order matches placeholder order across all of its clauses.
type renderer struct {
	joins   []joinClause
	bySteps map[string]string // join step signature -> alias
	args    []any
}

type joinClause struct {
	table string
	alias string
	on    string
}

func newRenderer() *renderer {
	return &renderer{bySteps: make(map[string]string)}
}

// expr renders one expression. scope maps table names to the alias in
// force for the current join depth; the root table maps to itself.
func (r *renderer) expr(e Expr, scope map[string]string) (string, error) {
	switch n := e.(type) {
	case Column:
		return r.column(n, scope), nil

	case Literal:
		r.args = append(r.args, toArg(n.V))
		return "?", nil

	case Unary:
		inner, err := r.expr(n.E, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s (%s)", n.Op, inner), nil

	case Binary:
		l, err := r.expr(n.L, scope)
		if err != nil {
			return "", err
		}
		rhs, err := r.expr(n.R, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, n.Op, rhs), nil

	case Call:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			s, err := r.expr(a, scope)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return fmt.Sprintf("%s(%s)", n.Fn, strings.Join(parts, ", ")), nil

	case In:
		subject, err := r.expr(n.E, scope)
		if err != nil {
			return "", err
		}
		if len(n.Elems) == 0 {
			// Empty set membership is always false.
			return "0", nil
		}
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			s, err := r.expr(el, scope)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return fmt.Sprintf("%s IN (%s)", subject, strings.Join(parts, ", ")), nil

	case IsNull:
		inner, err := r.expr(n.E, scope)
		if err != nil {
			return "", err
		}
		if n.Negate {
			return fmt.Sprintf("%s IS NOT NULL", inner), nil
		}
		return fmt.Sprintf("%s IS NULL", inner), nil

	case Join:
		return r.join(n, scope)

	case nil:
		return "", fmt.Errorf("render: nil expression")

	default:
		return "", fmt.Errorf("render: unsupported expression type %T", e)
	}
}

// join registers the step's INNER JOIN clause (once per distinct step)
// and renders the continuation in the joined table's scope.
func (r *renderer) join(j Join, scope map[string]string) (string, error) {
	left := r.column(j.Left, scope)
	step := left + "->" + j.Right.Table + "." + j.Right.Name

	alias, seen := r.bySteps[step]
	if !seen {
		alias = fmt.Sprintf("t%d", len(r.joins)+1)
		r.joins = append(r.joins, joinClause{
			table: j.Right.Table,
			alias: alias,
			on:    fmt.Sprintf("%s = %s.%s", left, alias, j.Right.Name),
		})
		r.bySteps[step] = alias
	}

	inner := make(map[string]string, len(scope)+1)
	for k, v := range scope {
		inner[k] = v
	}
	inner[j.Right.Table] = alias

	return r.expr(j.Cont, inner)
}

func (r *renderer) column(c Column, scope map[string]string) string {
	table := c.Table
	if alias, ok := scope[c.Table]; ok {
		table = alias
	}
	return table + "." + c.Name
}

func (r *renderer) joinSQL() string {
	var b strings.Builder
	for _, j := range r.joins {
		fmt.Fprintf(&b, " INNER JOIN %s AS %s ON %s", j.table, j.alias, j.on)
	}
	return b.String()
}

// toArg converts a literal to its engine primitive. Datetimes travel as
// real seconds since the Unix epoch, matching engine-evaluated now().
func toArg(v any) any {
	if t, ok := v.(time.Time); ok {
		return float64(t.UnixNano()) / 1e9
	}
	return v
}

// SQL renders the select to parameterized SQL.
func (s Select) SQL() (string, []any, error) {
	if len(s.Results) == 0 {
		return "", nil, fmt.Errorf("render select: no result columns")
	}
	r := newRenderer()
	scope := map[string]string{s.Table: s.Table}

	cols := make([]string, len(s.Results))
	for i, rc := range s.Results {
		sql, err := r.expr(rc.Expr, scope)
		if err != nil {
			return "", nil, fmt.Errorf("render select: result %d: %w", i, err)
		}
		cols[i] = fmt.Sprintf("%s AS %q", sql, rc.Alias)
	}

	var where string
	if s.Where != nil {
		sql, err := r.expr(s.Where, scope)
		if err != nil {
			return "", nil, fmt.Errorf("render select: where: %w", err)
		}
		where = " WHERE " + sql
	}

	var order string
	if len(s.OrderBy) > 0 {
		keys := make([]string, len(s.OrderBy))
		for i, k := range s.OrderBy {
			sql, err := r.expr(k.Expr, scope)
			if err != nil {
				return "", nil, fmt.Errorf("render select: order %d: %w", i, err)
			}
			dir := " ASC"
			if k.Descending {
				dir = " DESC"
			}
			keys[i] = sql + dir
		}
		order = " ORDER BY " + strings.Join(keys, ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s%s",
		strings.Join(cols, ", "), s.Table, r.joinSQL(), where, order)
	return sql, r.args, nil
}

// SQL renders the insert to parameterized SQL.
func (i Insert) SQL() (string, []any, error) {
	r := newRenderer()
	scope := map[string]string{i.Table: i.Table}

	if len(i.Values) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", i.Table), nil, nil
	}

	cols := make([]string, len(i.Values))
	vals := make([]string, len(i.Values))
	for idx, cv := range i.Values {
		sql, err := r.expr(cv.Value, scope)
		if err != nil {
			return "", nil, fmt.Errorf("render insert: %s: %w", cv.Column, err)
		}
		cols[idx] = cv.Column
		vals[idx] = sql
	}
	if len(r.joins) > 0 {
		return "", nil, fmt.Errorf("render insert: values cannot cross relationships")
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		i.Table, strings.Join(cols, ", "), strings.Join(vals, ", "))
	return sql, r.args, nil
}

// SQL renders the update to parameterized SQL. Mutation predicates must
// not cross relationships: SQLite UPDATE has no join clause.
func (u Update) SQL() (string, []any, error) {
	if len(u.Values) == 0 {
		return "", nil, fmt.Errorf("render update: no values")
	}
	r := newRenderer()
	scope := map[string]string{u.Table: u.Table}

	sets := make([]string, len(u.Values))
	for idx, cv := range u.Values {
		sql, err := r.expr(cv.Value, scope)
		if err != nil {
			return "", nil, fmt.Errorf("render update: %s: %w", cv.Column, err)
		}
		sets[idx] = fmt.Sprintf("%s = %s", cv.Column, sql)
	}

	var where string
	if u.Where != nil {
		sql, err := r.expr(u.Where, scope)
		if err != nil {
			return "", nil, fmt.Errorf("render update: where: %w", err)
		}
		where = " WHERE " + sql
	}
	if len(r.joins) > 0 {
		return "", nil, fmt.Errorf("render update: predicate cannot cross relationships")
	}

	sql := fmt.Sprintf("UPDATE %s SET %s%s", u.Table, strings.Join(sets, ", "), where)
	return sql, r.args, nil
}

// SQL renders the delete to parameterized SQL. Mutation predicates must
// not cross relationships.
func (d Delete) SQL() (string, []any, error) {
	r := newRenderer()
	scope := map[string]string{d.Table: d.Table}

	var where string
	if d.Where != nil {
		sql, err := r.expr(d.Where, scope)
		if err != nil {
			return "", nil, fmt.Errorf("render delete: where: %w", err)
		}
		where = " WHERE " + sql
	}
	if len(r.joins) > 0 {
		return "", nil, fmt.Errorf("render delete: predicate cannot cross relationships")
	}

	return fmt.Sprintf("DELETE FROM %s%s", d.Table, where), r.args, nil
}
