package tools

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// The sqlite provider never opens the caller's database file. Each call runs
// against a fresh in-memory database seeded with the fixture tables below,
// so results depend only on the request.
const fixtureSchema = `
CREATE TABLE issues (
	id       INTEGER PRIMARY KEY,
	title    TEXT NOT NULL,
	status   TEXT NOT NULL,
	assignee TEXT,
	priority TEXT
);
CREATE TABLE sprints (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	start_date TEXT,
	end_date   TEXT
);
CREATE TABLE team_members (
	email TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	role  TEXT NOT NULL
);
INSERT INTO issues (title, status, assignee, priority) VALUES
	('Fix login redirect loop', 'In Progress', 'jane.smith@company.com', 'high'),
	('Add sprint burndown export', 'Todo', 'mike.wilson@company.com', 'medium'),
	('Upgrade CI runners', 'Done', 'jane.smith@company.com', 'low'),
	('Draft Q3 roadmap', 'Backlog', 'john.doe@company.com', 'medium');
INSERT INTO sprints (name, start_date, end_date) VALUES
	('Sprint 14', '2024-01-01', '2024-01-14'),
	('Sprint 15', '2024-01-15', '2024-01-28');
INSERT INTO team_members (email, name, role) VALUES
	('john.doe@company.com', 'John Doe', 'project_manager'),
	('jane.smith@company.com', 'Jane Smith', 'developer'),
	('mike.wilson@company.com', 'Mike Wilson', 'team_lead');
`

// openFixtureDB returns a single-connection in-memory database with the
// fixture tables. Every pooled connection would get its own empty database,
// hence the limit of one.
func openFixtureDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open fixture database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fixtureSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed fixture database: %w", err)
	}
	return db, nil
}

func isReadQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

func executeQuery(ctx context.Context, args map[string]any) (Result, error) {
	query := GetStringDefault(args, "query", "")
	database := GetStringDefault(args, "database", "")
	if strings.TrimSpace(query) == "" {
		return NewErrorResult("query is required"), nil
	}

	db, err := openFixtureDB(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if !isReadQuery(query) {
		res, err := db.ExecContext(ctx, query)
		if err != nil {
			return nil, err
		}
		affected, _ := res.RowsAffected()
		return NewSuccessResult(map[string]any{
			"database":      database,
			"rows_affected": affected,
			"message":       fmt.Sprintf("Query executed, %d rows affected", affected),
		}), nil
	}

	columns, rows, err := queryRows(ctx, db, query)
	if err != nil {
		return nil, err
	}
	return NewSuccessResult(map[string]any{
		"database": database,
		"columns":  columns,
		"rows":     rows,
		"message":  fmt.Sprintf("Query returned %d rows", len(rows)),
	}), nil
}

func listTables(ctx context.Context, args map[string]any) (Result, error) {
	database := GetStringDefault(args, "database", "")

	db, err := openFixtureDB(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	_, rows, err := queryRows(ctx, db, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(rows))
	for _, r := range rows {
		if name, ok := r["name"].(string); ok {
			tables = append(tables, name)
		}
	}

	return NewSuccessResult(map[string]any{
		"database": database,
		"tables":   tables,
	}), nil
}

func queryRows(ctx context.Context, db *sql.DB, query string) ([]string, []map[string]any, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return columns, out, rows.Err()
}
