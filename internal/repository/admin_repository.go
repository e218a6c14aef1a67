// internal/repository/admin_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// adminTables is the allowlist of tables exposed through the admin surface,
// mapped to their primary key column. Queries are built only from entries in
// this map, never from raw request input.
var adminTables = map[string]string{
	"tasks":            "id",
	"task_completions": "id",
	"tags":             "id",
	"task_tags":        "task_id",
	"comments":         "id",
	"users":            "id",
}

// AdminRepository provides generic row access for the admin panel.
type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Tables returns the allowlisted table names in stable order.
func (r *AdminRepository) Tables() []string {
	names := make([]string, 0, len(adminTables))
	for name := range adminTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListRows returns every row of an allowlisted table as generic maps.
func (r *AdminRepository) ListRows(ctx context.Context, table string) ([]map[string]interface{}, error) {
	idCol, ok := adminTables[table]
	if !ok {
		return nil, sql.ErrNoRows
	}

	rows, err := r.db.QueryxContext(ctx, fmt.Sprintf(
		`SELECT * FROM %s ORDER BY %s`, table, idCol,
	))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var result []map[string]interface{}
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// DeleteRow removes one row by primary key from an allowlisted table.
func (r *AdminRepository) DeleteRow(ctx context.Context, table, id string) error {
	idCol, ok := adminTables[table]
	if !ok {
		return sql.ErrNoRows
	}

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1`, table, idCol,
	), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
