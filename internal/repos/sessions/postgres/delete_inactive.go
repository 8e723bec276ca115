package sessions

import (
	"context"
	"fmt"
	"time"
)

// DeleteInactive removes sessions idle since before cutoff. Their games,
// rounds and transactions go with them through ON DELETE CASCADE.
func (r *sessionsRepo) DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE last_activity < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete inactive sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}
