// Package repomocks holds testify mocks of the storage interfaces for
// service tests.
package repomocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos"
	"github.com/fastprodman/anoncasino/internal/repos/games"
	"github.com/fastprodman/anoncasino/internal/repos/paymentmethods"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	"github.com/fastprodman/anoncasino/internal/repos/settings"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

var (
	_ sessions.Sessions             = (*Sessions)(nil)
	_ transactions.Transactions     = (*Transactions)(nil)
	_ games.Games                   = (*Games)(nil)
	_ settings.Settings             = (*Settings)(nil)
	_ paymentmethods.PaymentMethods = (*PaymentMethods)(nil)
)

// Sessions is a mock of sessions.Sessions.
type Sessions struct {
	mock.Mock
}

func (m *Sessions) Create(ctx context.Context, s sessions.Session) (sessions.Session, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(sessions.Session), args.Error(1)
}

func (m *Sessions) Get(ctx context.Context, id uuid.UUID) (sessions.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(sessions.Session), args.Error(1)
}

func (m *Sessions) Touch(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Sessions) DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Sessions) LockForUpdate(tx *sql.Tx, id uuid.UUID) (sessions.Session, error) {
	args := m.Called(tx, id)
	return args.Get(0).(sessions.Session), args.Error(1)
}

func (m *Sessions) ApplyDelta(tx *sql.Tx, id uuid.UUID, delta, minBalance money.Amount) (money.Amount, error) {
	args := m.Called(tx, id, delta, minBalance)
	return args.Get(0).(money.Amount), args.Error(1)
}

// Transactions is a mock of transactions.Transactions.
type Transactions struct {
	mock.Mock
}

func (m *Transactions) Insert(tx *sql.Tx, t *transactions.Transaction) error {
	return m.Called(tx, t).Error(0)
}

func (m *Transactions) Get(ctx context.Context, id int64) (transactions.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(transactions.Transaction), args.Error(1)
}

func (m *Transactions) GetForUpdate(tx *sql.Tx, id int64) (transactions.Transaction, error) {
	args := m.Called(tx, id)
	return args.Get(0).(transactions.Transaction), args.Error(1)
}

func (m *Transactions) GetByExternalRefForUpdate(tx *sql.Tx, ref string) (transactions.Transaction, error) {
	args := m.Called(tx, ref)
	return args.Get(0).(transactions.Transaction), args.Error(1)
}

func (m *Transactions) UpdateStatus(tx *sql.Tx, id int64, upd transactions.StatusUpdate) error {
	return m.Called(tx, id, upd).Error(0)
}

func (m *Transactions) ListBySession(ctx context.Context, sessionID uuid.UUID, page repos.Page) ([]transactions.Transaction, int, error) {
	args := m.Called(ctx, sessionID, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]transactions.Transaction), args.Int(1), args.Error(2)
}

func (m *Transactions) Totals(ctx context.Context, sessionID uuid.UUID) (transactions.Totals, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(transactions.Totals), args.Error(1)
}

// Games is a mock of games.Games.
type Games struct {
	mock.Mock
}

func (m *Games) EnsureActive(tx *sql.Tx, sessionID uuid.UUID, game outcome.Game) (games.GameSession, error) {
	args := m.Called(tx, sessionID, game)
	return args.Get(0).(games.GameSession), args.Error(1)
}

func (m *Games) NextRound(tx *sql.Tx, r *games.Round) error {
	return m.Called(tx, r).Error(0)
}

func (m *Games) SaveStats(tx *sql.Tx, g *games.GameSession) error {
	return m.Called(tx, g).Error(0)
}

func (m *Games) Close(tx *sql.Tx, sessionID uuid.UUID, id int64, status games.Status) (games.GameSession, error) {
	args := m.Called(tx, sessionID, id, status)
	return args.Get(0).(games.GameSession), args.Error(1)
}

func (m *Games) ListBySession(ctx context.Context, sessionID uuid.UUID, page repos.Page) ([]games.GameSession, int, error) {
	args := m.Called(ctx, sessionID, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]games.GameSession), args.Int(1), args.Error(2)
}

func (m *Games) AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Settings is a mock of settings.Settings.
type Settings struct {
	mock.Mock
}

func (m *Settings) Get(ctx context.Context, key string) (settings.Entry, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(settings.Entry), args.Error(1)
}

func (m *Settings) List(ctx context.Context, publicOnly bool) ([]settings.Entry, error) {
	args := m.Called(ctx, publicOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]settings.Entry), args.Error(1)
}

func (m *Settings) Upsert(ctx context.Context, e settings.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *Settings) InsertMissing(ctx context.Context, entries []settings.Entry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

// PaymentMethods is a mock of paymentmethods.PaymentMethods.
type PaymentMethods struct {
	mock.Mock
}

func (m *PaymentMethods) Get(ctx context.Context, name string) (paymentmethods.Method, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(paymentmethods.Method), args.Error(1)
}

func (m *PaymentMethods) ListActive(ctx context.Context) ([]paymentmethods.Method, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]paymentmethods.Method), args.Error(1)
}
