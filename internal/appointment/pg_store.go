package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// refcursorOID is the PostgreSQL type OID of refcursor. A procedure returning
// only refcursor columns hands back one result set per cursor.
const refcursorOID = 1790

// cursorFetchMode keeps FETCH statements out of the per-connection statement
// cache. Their text depends on the cursor name and a reused name may describe
// a different row shape.
const cursorFetchMode = pgx.QueryExecModeSimpleProtocol

type entityTable struct {
	table  string
	column string
}

var entityTables = map[EntityKind]entityTable{
	EntityPatient: {table: "patients", column: "patient_id"},
	EntityDoctor:  {table: "doctors", column: "doctor_id"},
	EntityService: {table: "services", column: "service_id"},
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &pgSession{conn: conn}, nil
}

type pgSession struct {
	conn *pgxpool.Conn
}

func (s *pgSession) Release() {
	s.conn.Release()
}

func (s *pgSession) Exists(ctx context.Context, kind EntityKind, id int64) (bool, error) {
	t, ok := entityTables[kind]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
	}

	var count int64
	err := s.conn.QueryRow(ctx, existsSQL(t), id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", t.table, err)
	}
	return count > 0, nil
}

func (s *pgSession) Call(ctx context.Context, procedure string, args ...any) ([]ResultSet, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin %s: %w", procedure, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, callSQL(procedure, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", procedure, err)
	}
	first, cursors, err := collectResultSet(rows)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", procedure, err)
	}

	var sets []ResultSet
	if cursors {
		for _, row := range first.Rows {
			for _, col := range first.Columns {
				name, ok := cursorName(row[col])
				if !ok {
					continue
				}
				set, err := fetchCursor(ctx, tx, name)
				if err != nil {
					return nil, fmt.Errorf("call %s: %w", procedure, err)
				}
				sets = append(sets, set)
			}
		}
	} else {
		sets = append(sets, first)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s: %w", procedure, err)
	}

	return sets, nil
}

func (s *pgSession) InsertAuditLog(ctx context.Context, entry AuditEntry) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action_type, table_affected, record_id, action_timestamp)
		VALUES ($1, $2, $3, $4, now())
	`, entry.UserID, entry.ActionType, entry.TableAffected, entry.RecordID)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Helpers

func existsSQL(t entityTable) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1",
		pgx.Identifier{t.table}.Sanitize(), pgx.Identifier{t.column}.Sanitize())
}

// callSQL builds SELECT * FROM "proc"($1, ..., $n).
func callSQL(procedure string, nargs int) string {
	params := make([]string, nargs)
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("SELECT * FROM %s(%s)", pgx.Identifier{procedure}.Sanitize(), strings.Join(params, ", "))
}

// collectResultSet drains rows into a ResultSet and reports whether every
// column is a refcursor.
func collectResultSet(rows pgx.Rows) (ResultSet, bool, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	set := ResultSet{Columns: make([]string, len(fields))}
	cursors := len(fields) > 0
	for i, fd := range fields {
		set.Columns[i] = fd.Name
		if fd.DataTypeOID != refcursorOID {
			cursors = false
		}
	}

	set.Rows = []Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return ResultSet{}, false, err
		}
		rec := make(Record, len(values))
		for i, v := range values {
			rec[set.Columns[i]] = v
		}
		set.Rows = append(set.Rows, rec)
	}

	if err := rows.Err(); err != nil {
		return ResultSet{}, false, err
	}

	return set, cursors, nil
}

func fetchCursor(ctx context.Context, tx pgx.Tx, name string) (ResultSet, error) {
	rows, err := tx.Query(ctx, "FETCH ALL FROM "+pgx.Identifier{name}.Sanitize(), cursorFetchMode)
	if err != nil {
		return ResultSet{}, fmt.Errorf("fetch cursor %s: %w", name, err)
	}
	set, _, err := collectResultSet(rows)
	if err != nil {
		return ResultSet{}, fmt.Errorf("fetch cursor %s: %w", name, err)
	}
	return set, nil
}

func cursorName(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, n != ""
	case []byte:
		return string(n), len(n) > 0
	}
	return "", false
}
