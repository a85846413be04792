package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// BatchSize is the number of rows sent per multi-row INSERT.
const BatchSize = 1000

// BulkInsert writes rows with multi-row INSERT statements of at most BatchSize
// rows. suffix is appended verbatim, e.g. an ON CONFLICT clause. It returns the
// number of rows the database reports as affected.
func BulkInsert(ctx context.Context, exec sqlx.ExecerContext, table string, columns []string, rows [][]interface{}, suffix string) (int64, error) {
	var affected int64
	for start := 0; start < len(rows); start += BatchSize {
		end := start + BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var (
			sb   strings.Builder
			args = make([]interface{}, 0, len(chunk)*len(columns))
		)
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
		for i, row := range chunk {
			if len(row) != len(columns) {
				return affected, fmt.Errorf("%s: row has %d values, want %d", table, len(row), len(columns))
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			for j := range row {
				if j > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "$%d", len(args)+j+1)
			}
			sb.WriteByte(')')
			args = append(args, row...)
		}
		if suffix != "" {
			sb.WriteByte(' ')
			sb.WriteString(suffix)
		}

		res, err := exec.ExecContext(ctx, sb.String(), args...)
		if err != nil {
			return affected, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
	}
	return affected, nil
}
