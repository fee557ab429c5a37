// Package sqlite provides the SQLite implementation of the Kindred storage
// interfaces using the CGO-free modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Ensure *Store implements the combined storage interface at compile time.
var _ storage.Store = (*Store)(nil)

// NewStore opens a SQLite database at the given DSN (a file path or
// ":memory:"), configures it for concurrent use, and creates the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode lets readers proceed without blocking the
	// writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing immediately when the connection is held by
	// another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB exposes the underlying database handle for server wiring and tests.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// EdgeStore
// ---------------------------------------------------------------------------

const edgeColumns = `id, subject_id, object_id, relation_type, status, initiator_id,
	start_date, end_date, notes, created_at, updated_at`

// CreateEdge inserts a new edge row. The (subject, object, type) uniqueness
// constraint converts concurrent duplicate inserts into ErrDuplicateEdge.
func (s *Store) CreateEdge(ctx context.Context, edge *types.Edge) error {
	if edge == nil {
		return storage.ErrInvalidInput
	}
	if edge.ID == "" || edge.SubjectID == "" || edge.ObjectID == "" {
		return fmt.Errorf("%w: edge ID, subject, and object are required", storage.ErrInvalidInput)
	}

	now := time.Now()
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = now
	}
	if edge.UpdatedAt.IsZero() {
		edge.UpdatedAt = now
	}
	if edge.Status == "" {
		edge.Status = types.EdgeStatusPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edges (
			id, subject_id, object_id, relation_type, status, initiator_id,
			start_date, end_date, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		edge.ID,
		edge.SubjectID,
		edge.ObjectID,
		string(edge.Type),
		string(edge.Status),
		edge.InitiatorID,
		nullableTime(edge.StartDate),
		nullableTime(edge.EndDate),
		nullableString(edge.Notes),
		edge.CreatedAt,
		edge.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateEdge
		}
		return fmt.Errorf("sqlite: failed to create edge: %w", err)
	}

	return nil
}

// GetEdge retrieves an edge by ID.
func (s *Store) GetEdge(ctx context.Context, id string) (*types.Edge, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id)

	edge, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: GetEdge %s: %w", id, err)
	}
	return edge, nil
}

// FindEdge retrieves the edge keyed (subject, object, type). This is the
// lookup the mirror maintenance path runs on every write, backed by the
// uniqueness index.
func (s *Store) FindEdge(ctx context.Context, subjectID, objectID string, relType types.RelationType) (*types.Edge, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+edgeColumns+` FROM edges
		 WHERE subject_id = ? AND object_id = ? AND relation_type = ?`,
		subjectID, objectID, string(relType))

	edge, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: FindEdge (%s,%s,%s): %w", subjectID, objectID, relType, err)
	}
	return edge, nil
}

// UpdateEdgeFields overwrites the mutable fields of a single edge row.
// No cascade: propagating the change to the mirror is the caller's job.
func (s *Store) UpdateEdgeFields(ctx context.Context, id string, update storage.EdgeFieldUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE edges
		SET status = ?, start_date = ?, end_date = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		string(update.Status),
		nullableTime(update.StartDate),
		nullableTime(update.EndDate),
		nullableString(update.Notes),
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: UpdateEdgeFields %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: UpdateEdgeFields %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateStatusPair flips the status of both edges of a mirror pair inside a
// single transaction, so readers never observe the pair half-approved.
func (s *Store) UpdateStatusPair(ctx context.Context, primaryID, mirrorID string, status types.EdgeStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: UpdateStatusPair: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, id := range []string{primaryID, mirrorID} {
		res, err := tx.ExecContext(ctx,
			`UPDATE edges SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), now, id)
		if err != nil {
			return fmt.Errorf("sqlite: UpdateStatusPair %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: UpdateStatusPair %s: rows affected: %w", id, err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: UpdateStatusPair: commit: %w", err)
	}
	return nil
}

// DeleteEdge removes a single edge row. One-shot: deleting a mirror through
// this primitive cannot re-enter any cascade.
func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: DeleteEdge %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: DeleteEdge %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListEdgesFrom returns edges with the given subject, filtered.
func (s *Store) ListEdgesFrom(ctx context.Context, subjectID string, filter storage.EdgeFilter) ([]types.Edge, error) {
	return s.listEdges(ctx, "subject_id = ?", subjectID, filter)
}

// ListEdgesTo returns edges with the given object, filtered.
func (s *Store) ListEdgesTo(ctx context.Context, objectID string, filter storage.EdgeFilter) ([]types.Edge, error) {
	return s.listEdges(ctx, "object_id = ?", objectID, filter)
}

// ListEdgesInvolving returns every edge touching the person, newest first.
func (s *Store) ListEdgesInvolving(ctx context.Context, personID string) ([]types.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM edges
		 WHERE subject_id = ? OR object_id = ?
		 ORDER BY created_at DESC, id DESC`,
		personID, personID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ListEdgesInvolving %s: %w", personID, err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// listEdges runs an edge query anchored on one endpoint with the filter
// translated into additional WHERE clauses.
func (s *Store) listEdges(ctx context.Context, anchor string, anchorID string, filter storage.EdgeFilter) ([]types.Edge, error) {
	where := []string{anchor}
	args := []interface{}{anchorID}

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, fmt.Sprintf("relation_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.ActiveAt.IsZero() {
		where = append(where, "(end_date IS NULL OR end_date > ?)")
		args = append(args, filter.ActiveAt)
	}
	if filter.Initiator != "" {
		where = append(where, "initiator_id = ?")
		args = append(args, filter.Initiator)
	}
	if filter.ExcludeInitiator != "" {
		where = append(where, "initiator_id != ?")
		args = append(args, filter.ExcludeInitiator)
	}

	query := `SELECT ` + edgeColumns + ` FROM edges WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listEdges: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// ---------------------------------------------------------------------------
// PersonStore
// ---------------------------------------------------------------------------

const personColumns = `id, first_name, last_name, email, gender, bio,
	birthday, date_died, city_born, state_born, city_current, state_current,
	created_at, updated_at`

// StorePerson creates or updates a person (upsert on ID).
func (s *Store) StorePerson(ctx context.Context, person *types.Person) error {
	if person == nil {
		return storage.ErrInvalidInput
	}
	if person.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	now := time.Now()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people (
			id, first_name, last_name, email, gender, bio,
			birthday, date_died, city_born, state_born, city_current, state_current,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			gender = excluded.gender,
			bio = excluded.bio,
			birthday = excluded.birthday,
			date_died = excluded.date_died,
			city_born = excluded.city_born,
			state_born = excluded.state_born,
			city_current = excluded.city_current,
			state_current = excluded.state_current,
			updated_at = excluded.updated_at
	`,
		person.ID,
		nullableString(person.FirstName),
		nullableString(person.LastName),
		person.Email,
		nullableString(person.Gender),
		nullableString(person.Bio),
		nullableTime(person.Birthday),
		nullableTime(person.DateDied),
		nullableString(person.CityBorn),
		nullableString(person.StateBorn),
		nullableString(person.CityCurrent),
		nullableString(person.StateCurrent),
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to store person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE id = ?`, id)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: GetPerson %s: %w", id, err)
	}
	return person, nil
}

// PersonExists reports whether a person with the given ID exists.
func (s *Store) PersonExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM people WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: PersonExists %s: %w", id, err)
	}
	return true, nil
}

// ListPeople returns all people ordered by name.
func (s *Store) ListPeople(ctx context.Context) ([]types.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM people
		 ORDER BY first_name ASC, last_name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ListPeople: %w", err)
	}
	defer rows.Close()

	var people []types.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: ListPeople scan: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEdge(row rowScanner) (*types.Edge, error) {
	var e types.Edge
	var relType, status string
	var startDate, endDate sql.NullTime
	var notes sql.NullString

	if err := row.Scan(
		&e.ID, &e.SubjectID, &e.ObjectID, &relType, &status, &e.InitiatorID,
		&startDate, &endDate, &notes, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Type = types.RelationType(relType)
	e.Status = types.EdgeStatus(status)
	if startDate.Valid {
		t := startDate.Time
		e.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		e.EndDate = &t
	}
	if notes.Valid {
		e.Notes = notes.String
	}
	return &e, nil
}

func scanEdges(rows *sql.Rows) ([]types.Edge, error) {
	var edges []types.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, *e)
	}
	return edges, rows.Err()
}

func scanPerson(row rowScanner) (*types.Person, error) {
	var p types.Person
	var firstName, lastName, gender, bio sql.NullString
	var cityBorn, stateBorn, cityCur, stateCur sql.NullString
	var birthday, dateDied sql.NullTime

	if err := row.Scan(
		&p.ID, &firstName, &lastName, &p.Email, &gender, &bio,
		&birthday, &dateDied, &cityBorn, &stateBorn, &cityCur, &stateCur,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.FirstName = firstName.String
	p.LastName = lastName.String
	p.Gender = gender.String
	p.Bio = bio.String
	p.CityBorn = cityBorn.String
	p.StateBorn = stateBorn.String
	p.CityCurrent = cityCur.String
	p.StateCurrent = stateCur.String
	if birthday.Valid {
		t := birthday.Time
		p.Birthday = &t
	}
	if dateDied.Valid {
		t := dateDied.Time
		p.DateDied = &t
	}
	return &p, nil
}

// isUniqueViolation reports whether the error came from the uniqueness
// constraint on (subject_id, object_id, relation_type).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
