package games

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/games"
)

func (r *gamesRepo) NextRound(tx *sql.Tx, round *games.Round) error {
	params, err := json.Marshal(round.BetParams)
	if err != nil {
		return fmt.Errorf("encode bet params: %w", err)
	}

	result, err := json.Marshal(round.Result)
	if err != nil {
		return fmt.Errorf("encode round result: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO game_rounds (
			game_session_id, round_number, stake, payout, house_edge, bet_type, bet_params, result
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`,
		round.GameSessionID, round.RoundNumber, int64(round.Stake), int64(round.Payout),
		round.HouseEdge, round.BetType, params, result,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return games.ErrDuplicateRound
		}

		return fmt.Errorf("insert round: %w", err)
	}

	return nil
}
