package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// listColumns names the filterable columns of a listing table
type listColumns struct {
	typ      string
	level    string
	priority string
}

// buildListFilterClause constructs the WHERE clauses shared by the alert and
// recommendation listings. Status accepts a comma separated list.
func buildListFilterClause(filter domain.ListFilter, alias string, cols listColumns, startIndex int) (string, []interface{}) {
	alias = normalizeAlias(alias)

	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.CalcDate != nil {
		clauses = append(clauses, fmt.Sprintf("%sfecha_calculo = $%d::date", alias, idx))
		args = append(args, *filter.CalcDate)
		idx++
	}

	if filter.Type != "" && cols.typ != "" {
		clauses = append(clauses, fmt.Sprintf("%s%s = $%d", alias, cols.typ, idx))
		args = append(args, strings.ToUpper(filter.Type))
		idx++
	}

	if filter.Level != "" && cols.level != "" {
		clauses = append(clauses, fmt.Sprintf("%s%s = $%d", alias, cols.level, idx))
		args = append(args, strings.ToUpper(filter.Level))
		idx++
	}

	if filter.Priority != "" && cols.priority != "" {
		clauses = append(clauses, fmt.Sprintf("%s%s = $%d", alias, cols.priority, idx))
		args = append(args, strings.ToUpper(filter.Priority))
		idx++
	}

	if statuses := splitStatuses(filter.Status); len(statuses) > 0 {
		clauses = append(clauses, fmt.Sprintf("%sestado = ANY($%d)", alias, idx))
		args = append(args, pq.Array(statuses))
		idx++
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func splitStatuses(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

// severityOrder sorts alert levels and priorities from most to least urgent
func severityOrder(column string) string {
	return fmt.Sprintf(`CASE %s
	        WHEN 'CRITICO' THEN 0 WHEN 'URGENTE' THEN 0
	        WHEN 'ALTO' THEN 1 WHEN 'ALTA' THEN 1
	        WHEN 'MEDIO' THEN 2 WHEN 'MEDIA' THEN 2
	        ELSE 3
	    END`, column)
}

// transition moves a row of table to upd.Status if the lifecycle allows it.
// The row is locked for the rest of the transaction.
func transition(ctx context.Context, tx *sqlx.Tx, table string, lifecycle domain.Lifecycle, upd domain.StatusUpdate) error {
	var current string
	err := tx.GetContext(ctx, &current, `SELECT estado FROM `+table+` WHERE id = $1 FOR UPDATE`, upd.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", table, upd.ID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s %d: %w", table, upd.ID, err)
	}

	next := strings.ToUpper(upd.Status)
	if !lifecycle.CanTransition(current, next) {
		return fmt.Errorf("%s %d %s -> %s: %w", table, upd.ID, current, next, domain.ErrInvalidTransition)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE `+table+`
		SET estado = $1, fecha_actualizacion = NOW(), usuario_accion = NULLIF($2, '')
		WHERE id = $3
	`, next, upd.User, upd.ID)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", table, upd.ID, err)
	}
	return nil
}
