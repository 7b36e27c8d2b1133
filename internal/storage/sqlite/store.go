package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/domain"
)

// Store implements the ticket store over a single SQLite database.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

// NewStore returns entries with timestamps rendered in loc.
func NewStore(db *sql.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{db: db, loc: loc}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Agents ---

func (s *Store) GetAgent(ctx context.Context, id int64) (domain.Agent, error) {
	var a domain.Agent
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name FROM agents WHERE id = ?`, id,
	).Scan(&a.ID, &a.Email, &a.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Agent{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Agent{}, fmt.Errorf("query agent %d: %w", id, err)
	}
	return a, nil
}

// EnsureAgent mirrors a roster agent into the store, keyed by id. The
// roster is the source of truth, so a changed email or display name
// overwrites the mirrored row. Passwords are never mirrored.
func (s *Store) EnsureAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (id, email, display_name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, display_name = excluded.display_name`,
		a.ID, a.Email, a.DisplayName,
	)
	if err != nil {
		return domain.Agent{}, fmt.Errorf("upsert agent %d: %w", a.ID, err)
	}
	return s.GetAgent(ctx, a.ID)
}

// --- Entries ---

const entryColumns = `id, number, agent_id, action, description, logged_at`

func (s *Store) InsertEntry(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (number, agent_id, action, description, logged_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Number, e.AgentID, e.Action, e.Description, e.LoggedAt.UnixNano(),
	)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Entry{}, fmt.Errorf("insert entry id: %w", err)
	}
	e.ID = id
	e.LoggedAt = s.fromNanos(e.LoggedAt.UnixNano())
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, id int64) (domain.Entry, error) {
	e, err := s.scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("query entry %d: %w", id, err)
	}
	return e, nil
}

// UpdateEntry overwrites number, action, description and logged_at.
func (s *Store) UpdateEntry(ctx context.Context, e domain.Entry) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries
		 SET number = ?, action = ?, description = ?, logged_at = ?
		 WHERE id = ?`,
		e.Number, e.Action, e.Description, e.LoggedAt.UnixNano(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	return requireOneRow(res)
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return requireOneRow(res)
}

// ListEntries returns the agent's entries with from <= logged_at < to,
// newest first.
func (s *Store) ListEntries(ctx context.Context, agentID int64, from, to time.Time) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+`
		 FROM entries
		 WHERE agent_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at DESC, id DESC`,
		agentID, from.UnixNano(), to.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEntry(row rowScanner) (domain.Entry, error) {
	var e domain.Entry
	var nanos int64
	if err := row.Scan(&e.ID, &e.Number, &e.AgentID, &e.Action, &e.Description, &nanos); err != nil {
		return domain.Entry{}, err
	}
	e.LoggedAt = s.fromNanos(nanos)
	return e, nil
}

func (s *Store) fromNanos(n int64) time.Time {
	return time.Unix(0, n).In(s.loc)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
