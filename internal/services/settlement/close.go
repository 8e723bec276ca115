package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/games"
)

// CloseGameSession ends an active game session of sessionID as completed.
func (s *Service) CloseGameSession(ctx context.Context, sessionID uuid.UUID, gameSessionID int64) (games.GameSession, error) {
	var closed games.GameSession

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.sessions.LockForUpdate(tx, sessionID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		closed, err = s.games.Close(tx, sessionID, gameSessionID, games.StatusCompleted)
		if err != nil {
			return fmt.Errorf("close game session %d: %w", gameSessionID, err)
		}

		return nil
	})
	if err != nil {
		return games.GameSession{}, fmt.Errorf("close game session: %w", classify(err))
	}

	slog.InfoContext(ctx, "game session closed",
		"anon_id", sessionID, "game_session_id", gameSessionID, "rounds", closed.RoundsPlayed)

	return closed, nil
}

func isPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
