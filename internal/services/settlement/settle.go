package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos/games"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

// SettleWager runs the full flow in a single DB transaction:
//
// 1) Lock the session row (FOR UPDATE).
// 2) Validate the stake against the locked balance and the configured minimum.
// 3) Lock or open the active game session for the game.
// 4) Resolve the wager.
// 5) Apply balance - stake + payout.
// 6) Append the bet and, when something was paid, the win transaction.
// 7) Append the round and update the game session aggregates.
//
// The session row lock serializes this against every other balance change
// of the same session.
func (s *Service) SettleWager(ctx context.Context, w Wager) (Outcome, error) {
	var out Outcome

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1) Lock session row
		sess, err := s.sessions.LockForUpdate(tx, w.SessionID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		// 2) Resolve configuration, then validate against the locked balance
		minBet, err := s.config.MinBet(ctx, w.Game)
		if err != nil {
			return fmt.Errorf("resolve minimum bet: %w", err)
		}

		table, err := s.config.HouseEdgeTable(ctx, s.engine.Table())
		if err != nil {
			return fmt.Errorf("resolve house edge: %w", err)
		}

		engine := s.engine.WithTable(table)

		switch {
		case w.Stake <= 0:
			return fmt.Errorf("%w: %s", ErrInvalidStake, w.Stake)
		case w.Stake > sess.Balance:
			return fmt.Errorf("stake %s over balance %s: %w", w.Stake, sess.Balance, ErrInsufficientFunds)
		case w.Stake < minBet:
			return fmt.Errorf("%w: %s < %s for %s", ErrBelowMinimumBet, w.Stake, minBet, w.Game)
		}

		// 3) Active game session
		gs, err := s.games.EnsureActive(tx, w.SessionID, w.Game)
		if err != nil {
			return fmt.Errorf("ensure active game session: %w", err)
		}

		// 4) Resolve
		res := engine.Play(w.Game, w.Params, w.Stake)

		// 5) Apply the delta; the floor re-checks what step 2 already did
		newBalance, err := s.sessions.ApplyDelta(tx, w.SessionID, res.Payout-w.Stake, 0)
		if err != nil {
			return fmt.Errorf("apply balance delta: %w", err)
		}

		// 6) Ledger entries
		roundNumber := gs.RoundsPlayed + 1
		meta := transactions.Metadata{"game_type": string(w.Game), "round_number": roundNumber}

		afterBet := sess.Balance - w.Stake
		bet := &transactions.Transaction{
			SessionID:     w.SessionID,
			Type:          transactions.TypeBet,
			Amount:        w.Stake,
			BalanceAfter:  &afterBet,
			Status:        transactions.StatusCompleted,
			GameSessionID: &gs.ID,
			Description:   fmt.Sprintf("Bet on %s", w.Game),
			Metadata:      meta,
		}

		err = s.transactions.Insert(tx, bet)
		if err != nil {
			return fmt.Errorf("record bet: %w", err)
		}

		if res.Payout > 0 {
			win := &transactions.Transaction{
				SessionID:     w.SessionID,
				Type:          transactions.TypeWin,
				Amount:        res.Payout,
				BalanceAfter:  &newBalance,
				Status:        transactions.StatusCompleted,
				GameSessionID: &gs.ID,
				Description:   fmt.Sprintf("Win from %s", w.Game),
				Metadata:      meta,
			}

			err = s.transactions.Insert(tx, win)
			if err != nil {
				return fmt.Errorf("record win: %w", err)
			}
		}

		// 7) Round and aggregates
		round := &games.Round{
			GameSessionID: gs.ID,
			RoundNumber:   roundNumber,
			Stake:         w.Stake,
			Payout:        res.Payout,
			HouseEdge:     res.HouseEdge,
			BetType:       betType(w),
			BetParams:     w.Params,
			Result:        res.Detail,
		}

		err = s.games.NextRound(tx, round)
		if err != nil {
			return fmt.Errorf("record round: %w", err)
		}

		now := s.now()
		recordRound(&gs, w.Stake, res.Payout, newBalance)
		gs.LastRoundAt = &now

		err = s.games.SaveStats(tx, &gs)
		if err != nil {
			return fmt.Errorf("save game stats: %w", err)
		}

		out = Outcome{
			Payout:        res.Payout,
			NewBalance:    newBalance,
			Detail:        res.Detail,
			RoundID:       round.ID,
			RoundNumber:   round.RoundNumber,
			GameSessionID: gs.ID,
			HouseEdge:     res.HouseEdge,
			Won:           res.Won(w.Stake),
		}

		return nil
	})
	if err != nil {
		err = classify(err)
		if isPersistence(err) {
			slog.ErrorContext(ctx, "settle wager failed",
				"anon_id", w.SessionID, "game", w.Game, "stake", w.Stake, "error", err)
		}

		return Outcome{}, fmt.Errorf("settle wager: %w", err)
	}

	slog.InfoContext(ctx, "wager settled",
		"anon_id", w.SessionID,
		"game", w.Game,
		"stake", w.Stake,
		"payout", out.Payout,
		"balance", out.NewBalance,
		"round_id", out.RoundID,
	)

	return out, nil
}

func betType(w Wager) string {
	if w.Params.Type != "" {
		return w.Params.Type
	}

	return string(w.Game)
}

// recordRound folds one round into the game session aggregates. A round is
// won when it paid more than the stake; a push counts as a loss. Positive
// streaks count wins, negative ones losses.
func recordRound(gs *games.GameSession, stake, payout, balance money.Amount) {
	gs.RoundsPlayed++
	gs.TotalStaked += stake
	gs.TotalWon += payout
	gs.CurrentBalance = balance

	if payout > stake {
		gs.RoundsWon++
		gs.CurrentStreak = max(gs.CurrentStreak, 0) + 1
	} else {
		gs.CurrentStreak = min(gs.CurrentStreak, 0) - 1
	}

	gs.LongestStreak = max(gs.LongestStreak, abs(gs.CurrentStreak))
	gs.BiggestWin = money.Max(gs.BiggestWin, payout)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// Table is the payout table before house edge overrides from settings.
func (s *Service) Table() outcome.Table {
	return s.engine.Table()
}
