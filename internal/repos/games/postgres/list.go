package games

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/repos"
	"github.com/fastprodman/anoncasino/internal/repos/games"
)

func (r *gamesRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, page repos.Page) ([]games.GameSession, int, error) {
	var total int

	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM game_sessions WHERE session_id = $1
	`, sessionID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count game sessions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM game_sessions
		WHERE session_id = $1
		ORDER BY started_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, sessionID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list game sessions: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	out := make([]games.GameSession, 0, page.PerPage)

	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan game session: %w", err)
		}

		out = append(out, g)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate game sessions: %w", err)
	}

	return out, total, nil
}
