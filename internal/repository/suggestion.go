package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/domain"
)

type SuggestionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSuggestionRepository(sqlDB *sql.DB, logger zerolog.Logger) *SuggestionRepository {
	return &SuggestionRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Insert stores one generated recommendation.
func (r *SuggestionRepository) Insert(ctx context.Context, suggestion *domain.Suggestion) error {
	id := suggestion.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO suggestions (id, match_id, turn, kind, prompt, response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, suggestion.MatchID, suggestion.Turn, suggestion.Kind,
		suggestion.Prompt, suggestion.Response, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion for match %s: %w", suggestion.MatchID, err)
	}
	return nil
}

// GetByMatchID returns all recommendations for a match ordered by turn.
func (r *SuggestionRepository) GetByMatchID(ctx context.Context, matchID string) ([]domain.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, turn, kind, prompt, response, created_at
		 FROM suggestions WHERE match_id = ? ORDER BY turn, created_at`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions for match %s: %w", matchID, err)
	}
	defer rows.Close()

	var result []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.ID, &s.MatchID, &s.Turn, &s.Kind, &s.Prompt, &s.Response, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
