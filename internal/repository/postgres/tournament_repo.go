package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/tournament"
)

type TournamentRepo struct {
	DB *sql.DB
}

func NewTournamentRepo(db *sql.DB) *TournamentRepo {
	return &TournamentRepo{DB: db}
}

// Standing is a profile's record across every stored tournament.
type Standing struct {
	Profile string `json:"profile"`
	Played  int    `json:"played"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Draws   int    `json:"draws"`
	Rating  int    `json:"rating"`
}

func (s Standing) WinRate() float64 {
	if s.Played == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Played)
}

// SaveTournament stores the series, its games and the standings delta in one
// transaction.
func (r *TournamentRepo) SaveTournament(ctx context.Context, result *tournament.Result) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO tournament (tournament_id, profile_a, profile_b, a_wins, b_wins, draws, rating_a, rating_b, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (tournament_id) DO NOTHING;
	`, result.ID, result.ProfileA, result.ProfileB, result.AWins, result.BWins, result.Draws,
		result.RatingA, result.RatingB, result.StartedAt, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}

	for _, game := range result.Games {
		moves, err := json.Marshal(game.Moves)
		if err != nil {
			return fmt.Errorf("failed to marshal moves: %w", err)
		}
		var winner sql.NullString
		if !game.IsDraw() {
			winner = sql.NullString{String: game.Winner, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO tournament_game (game_id, tournament_id, game_index, first_profile, second_profile, winner, moves, duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id) DO NOTHING;
		`, game.ID, result.ID, game.Index, game.First, game.Second, winner, moves, game.Duration.Milliseconds(), game.StartedAt)
		if err != nil {
			return fmt.Errorf("failed to insert game %d: %w", game.Index, err)
		}
	}

	if result.ProfileA != result.ProfileB {
		if err := upsertStanding(ctx, tx, result.ProfileA, result.Total(), result.AWins, result.BWins, result.Draws, result.RatingA); err != nil {
			return err
		}
		if err := upsertStanding(ctx, tx, result.ProfileB, result.Total(), result.BWins, result.AWins, result.Draws, result.RatingB); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// upsertStanding adds one series to a profile's totals. Ratings move by the
// series' delta from the initial rating.
func upsertStanding(ctx context.Context, tx *sql.Tx, profile string, played, wins, losses, draws, rating int) error {
	delta := rating - domain.InitialRating
	_, err := tx.ExecContext(ctx, `
	INSERT INTO profile_standing (profile, played, wins, losses, draws, rating, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (profile) DO UPDATE SET
		played = profile_standing.played + EXCLUDED.played,
		wins = profile_standing.wins + EXCLUDED.wins,
		losses = profile_standing.losses + EXCLUDED.losses,
		draws = profile_standing.draws + EXCLUDED.draws,
		rating = profile_standing.rating + $7,
		updated_at = NOW();
	`, profile, played, wins, losses, draws, rating, delta)
	if err != nil {
		return fmt.Errorf("failed to update standing for %s: %w", profile, err)
	}
	return nil
}

// GetStandings returns the top profiles by rating.
func (r *TournamentRepo) GetStandings(ctx context.Context, limit int) ([]Standing, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT profile, played, wins, losses, draws, rating
	FROM profile_standing
	ORDER BY rating DESC, wins DESC
	LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	var standings []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.Profile, &s.Played, &s.Wins, &s.Losses, &s.Draws, &s.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

// DeleteOlderThan prunes finished tournaments and, by cascade, their games.
func (r *TournamentRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
	DELETE FROM tournament
	WHERE finished_at < NOW() - make_interval(days => $1);
	`, days)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old tournaments: %w", err)
	}
	return res.RowsAffected()
}
