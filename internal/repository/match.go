package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/domain"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Upsert stores or refreshes a match keyed by room id and returns the row id.
func (r *MatchRepository) Upsert(ctx context.Context, match *domain.Match) (string, error) {
	id := match.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return "", fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (id, room_id, title, generation, p1_name, p2_name, user_side, winner, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET
		   title = excluded.title,
		   generation = excluded.generation,
		   p1_name = excluded.p1_name,
		   p2_name = excluded.p2_name,
		   user_side = excluded.user_side,
		   winner = excluded.winner,
		   updated_at = excluded.updated_at`,
		id, match.RoomID, match.Title, match.Generation, match.P1Name, match.P2Name,
		match.UserSide, match.Winner, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert match %s: %w", match.RoomID, err)
	}

	return r.idByRoom(ctx, match.RoomID)
}

// SetWinner records the match outcome.
func (r *MatchRepository) SetWinner(ctx context.Context, roomID, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET winner = ?, updated_at = ? WHERE room_id = ?`,
		winner, time.Now().UTC(), roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to set winner for %s: %w", roomID, err)
	}
	return nil
}

// GetByRoomID returns the stored match for a room, or nil when none exists.
func (r *MatchRepository) GetByRoomID(ctx context.Context, roomID string) (*domain.Match, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, room_id, title, generation, p1_name, p2_name, user_side, winner, created_at, updated_at
		 FROM matches WHERE room_id = ?`, roomID)

	var m domain.Match
	err := row.Scan(&m.ID, &m.RoomID, &m.Title, &m.Generation, &m.P1Name, &m.P2Name,
		&m.UserSide, &m.Winner, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", roomID, err)
	}
	return &m, nil
}

func (r *MatchRepository) idByRoom(ctx context.Context, roomID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM matches WHERE room_id = ?`, roomID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to resolve match id for %s: %w", roomID, err)
	}
	return id, nil
}
