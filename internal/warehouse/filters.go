package warehouse

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// FilterParams configures an eligible-user filter evaluation over a
// label table. Filters are raw SQL conditions, same trust model as
// ExecuteQuery. Rate bounds and the row floor are taken literally; the
// tool layer supplies defaults.
type FilterParams struct {
	Filters      []string
	LabelTable   string
	LabelColumn  string
	EntityColumn string

	MinPositiveRate float64
	MaxPositiveRate float64
	MinEligibleRows int64
}

// FilterMetrics describes one evaluated filter: the segment it selects
// and how that segment relates to the overall positive population.
type FilterMetrics struct {
	FilterSQL    string  `json:"filter_sql"`
	EligibleRows int64   `json:"eligible_rows"`
	PositiveRows int64   `json:"positive_label_rows"`
	NegativeRows int64   `json:"negative_label_rows"`
	PositiveRate float64 `json:"positive_rate"`
	Recall       float64 `json:"recall"`
}

// EvaluateFilters measures every candidate filter against the label
// table and picks the best one: highest recall among filters whose
// positive rate sits inside the configured bounds and whose segment
// meets the row floor, with segment size breaking ties. The returned
// best is nil when no filter qualifies; evaluated always carries the
// metrics of every candidate so the caller can show why.
func EvaluateFilters(ctx context.Context, wh Warehouse, p FilterParams) (best *FilterMetrics, evaluated []FilterMetrics, err error) {
	table, err := quoteQualified(p.LabelTable)
	if err != nil {
		return nil, nil, err
	}
	if err := validIdent(p.LabelColumn); err != nil {
		return nil, nil, err
	}
	if err := validIdent(p.EntityColumn); err != nil {
		return nil, nil, err
	}

	positiveCond := fmt.Sprintf("%q = 1", p.LabelColumn)
	totalPositives, err := countDistinct(ctx, wh, p.EntityColumn, table, positiveCond)
	if err != nil {
		return nil, nil, err
	}
	if totalPositives == 0 {
		return nil, nil, fmt.Errorf("no rows in %s have %s = 1; recall is undefined", p.LabelTable, p.LabelColumn)
	}

	for _, filter := range p.Filters {
		eligible, err := countDistinct(ctx, wh, p.EntityColumn, table, filter)
		if err != nil {
			return nil, nil, fmt.Errorf("filter %q: %w", filter, err)
		}
		m := FilterMetrics{FilterSQL: filter, EligibleRows: eligible}
		if eligible > 0 {
			positives, err := countDistinct(ctx, wh, p.EntityColumn, table, fmt.Sprintf("%s AND (%s)", positiveCond, filter))
			if err != nil {
				return nil, nil, fmt.Errorf("filter %q: %w", filter, err)
			}
			m.PositiveRows = positives
			m.NegativeRows = eligible - positives
			m.PositiveRate = round3(float64(positives) / float64(eligible))
			m.Recall = round3(float64(positives) / float64(totalPositives))
		}
		evaluated = append(evaluated, m)

		if eligible < p.MinEligibleRows || eligible == 0 {
			continue
		}
		if m.PositiveRate < p.MinPositiveRate || m.PositiveRate > p.MaxPositiveRate {
			continue
		}
		if best == nil || m.Recall > best.Recall ||
			(m.Recall == best.Recall && m.EligibleRows > best.EligibleRows) {
			picked := m
			best = &picked
		}
	}
	return best, evaluated, nil
}

// countDistinct counts distinct values of column in table under an
// optional condition.
func countDistinct(ctx context.Context, wh Warehouse, column, table, cond string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(DISTINCT %q) AS n FROM %s", column, table)
	if cond != "" {
		query += " WHERE " + cond
	}
	rows, err := wh.ExecuteQuery(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 {
		return 0, fmt.Errorf("count query returned %d rows", len(rows))
	}
	switch n := rows[0]["n"].(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("count query returned %T, want integer", rows[0]["n"])
	}
}

// quoteQualified validates a possibly dot-qualified table name and
// quotes each part separately.
func quoteQualified(table string) (string, error) {
	parts := strings.Split(table, ".")
	quoted := make([]string, len(parts))
	for i, part := range parts {
		if err := validIdent(part); err != nil {
			return "", fmt.Errorf("table %q: %w", table, err)
		}
		quoted[i] = fmt.Sprintf("%q", part)
	}
	return strings.Join(quoted, "."), nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
