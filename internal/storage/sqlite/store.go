// Package sqlite persists session state for crash recovery. Writes
// arrive asynchronously through the app gateway; the in-memory session
// stays authoritative while the process lives.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
)

type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the SQLite database and applies the
// schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			phase TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			name TEXT NOT NULL,
			is_observer INTEGER NOT NULL,
			status TEXT NOT NULL,
			FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			participant_id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			value TEXT NOT NULL,
			FOREIGN KEY (participant_id) REFERENCES participants (id) ON DELETE CASCADE,
			FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the logical effect of one mutation.
func (s *Store) Apply(ctx context.Context, oc core.Outcome) error {
	if err := s.upsertRoom(ctx, oc.Room); err != nil {
		return err
	}
	switch oc.Kind {
	case core.OutcomeJoined, core.OutcomeLeft:
		if err := s.upsertParticipant(ctx, oc.Room.ID, oc.Actor); err != nil {
			return err
		}
		if oc.Kind == core.OutcomeLeft && oc.Room.Phase == domain.PhaseCollecting {
			_, err := s.db.ExecContext(ctx,
				`DELETE FROM votes WHERE participant_id = ?`, string(oc.Actor.ID))
			return err
		}
	case core.OutcomeVoted:
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO votes (participant_id, room_id, value) VALUES (?, ?, ?)
			ON CONFLICT(participant_id) DO UPDATE SET value = excluded.value`,
			string(oc.Actor.ID), string(oc.Room.ID), string(oc.Value))
		return err
	case core.OutcomeReset:
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM votes WHERE room_id = ?`, string(oc.Room.ID))
		return err
	case core.OutcomeRevealed:
		// phase already covered by the room upsert
	}
	return nil
}

func (s *Store) upsertRoom(ctx context.Context, snap core.RoomSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, owner_id, phase, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, phase = excluded.phase`,
		string(snap.ID), string(snap.Name), string(snap.OwnerID),
		string(snap.Phase), snap.CreatedAt.UTC().UnixMilli())
	return err
}

func (s *Store) upsertParticipant(ctx context.Context, room domain.RoomID, p domain.Participant) error {
	observer := 0
	if p.Observer {
		observer = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, room_id, name, is_observer, status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status`,
		string(p.ID), string(room), p.Name, observer, string(p.Status))
	return err
}

// DeleteRoom removes a room and, through cascades, its participants and
// votes. Used by administrative eviction.
func (s *Store) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, string(id))
	return err
}

// RoomRecord is one fully loaded room, ready for registry restoration.
type RoomRecord struct {
	Room         domain.Room
	Phase        domain.Phase
	Participants []domain.Participant
	Votes        map[domain.ParticipantID]domain.VoteValue
}

// LoadRooms reads every stored room for startup recovery.
func (s *Store) LoadRooms(ctx context.Context) ([]RoomRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_id, phase, created_at FROM rooms`)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	var records []RoomRecord
	for rows.Next() {
		var id, name, owner, phase string
		var createdAt int64
		if err := rows.Scan(&id, &name, &owner, &phase, &createdAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		records = append(records, RoomRecord{
			Room: domain.Room{
				ID:        domain.RoomID(id),
				Name:      domain.RoomName(name),
				OwnerID:   domain.ParticipantID(owner),
				CreatedAt: time.UnixMilli(createdAt).UTC(),
			},
			Phase: domain.Phase(phase),
			Votes: make(map[domain.ParticipantID]domain.VoteValue),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if err := s.loadMembers(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) loadMembers(ctx context.Context, rec *RoomRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_observer, status FROM participants WHERE room_id = ?`,
		string(rec.Room.ID))
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name, status string
		var observer int
		if err := rows.Scan(&id, &name, &observer, &status); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		rec.Participants = append(rec.Participants, domain.Participant{
			ID:       domain.ParticipantID(id),
			Name:     name,
			Observer: observer != 0,
			Status:   domain.Status(status),
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	votes, err := s.db.QueryContext(ctx,
		`SELECT participant_id, value FROM votes WHERE room_id = ?`, string(rec.Room.ID))
	if err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	defer votes.Close()
	for votes.Next() {
		var pid, value string
		if err := votes.Scan(&pid, &value); err != nil {
			return fmt.Errorf("scan vote: %w", err)
		}
		rec.Votes[domain.ParticipantID(pid)] = domain.VoteValue(value)
	}
	return votes.Err()
}
