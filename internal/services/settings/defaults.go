package settings

import (
	"github.com/fastprodman/anoncasino/internal/outcome"
	repo "github.com/fastprodman/anoncasino/internal/repos/settings"
)

const (
	KeyMinDeposit       = "min_deposit_amount"
	KeyMaxDeposit       = "max_deposit_amount"
	KeyMinWithdraw      = "min_withdraw_amount"
	KeyRateLimitEnabled = "rate_limit_enabled"
	KeyRateLimitMinute  = "rate_limit_requests_per_minute"
	KeyRateLimitHour    = "rate_limit_requests_per_hour"
	minBetPrefix        = "min_bet_"
	houseEdgePrefix     = "house_edge_"
	fallbackMinBet      = "1"
	categoryPayment     = "payment"
	categoryGame        = "game"
	categorySecurity    = "security"
)

// MinBetKey is the settings key holding game's minimum stake.
func MinBetKey(game outcome.Game) string { return minBetPrefix + string(game) }

// HouseEdgeKey is the settings key overriding game's house edge.
func HouseEdgeKey(game outcome.Game) string { return houseEdgePrefix + string(game) }

// Defaults are the compiled-in values, also seeded into the settings table
// by EnsureDefaults. Amounts are in major units.
func Defaults() []repo.Entry {
	return []repo.Entry{
		{Key: KeyMinDeposit, Value: "10", Type: repo.TypeNumber, Category: categoryPayment, IsPublic: true, Description: "Minimum deposit"},
		{Key: KeyMaxDeposit, Value: "5000", Type: repo.TypeNumber, Category: categoryPayment, IsPublic: true, Description: "Maximum deposit"},
		{Key: KeyMinWithdraw, Value: "20", Type: repo.TypeNumber, Category: categoryPayment, IsPublic: true, Description: "Minimum withdrawal"},
		{Key: MinBetKey(outcome.Roulette), Value: "5", Type: repo.TypeNumber, Category: categoryGame, IsPublic: true, Description: "Minimum roulette bet"},
		{Key: MinBetKey(outcome.Blackjack), Value: "10", Type: repo.TypeNumber, Category: categoryGame, IsPublic: true, Description: "Minimum blackjack bet"},
		{Key: MinBetKey(outcome.Slots), Value: "1", Type: repo.TypeNumber, Category: categoryGame, IsPublic: true, Description: "Minimum slots bet"},
		{Key: MinBetKey(outcome.Dice), Value: "5", Type: repo.TypeNumber, Category: categoryGame, IsPublic: true, Description: "Minimum dice bet"},
		{Key: KeyRateLimitEnabled, Value: "true", Type: repo.TypeBoolean, Category: categorySecurity, Description: "Rate limiting enabled"},
		{Key: KeyRateLimitMinute, Value: "60", Type: repo.TypeNumber, Category: categorySecurity, Description: "Requests per minute"},
		{Key: KeyRateLimitHour, Value: "1000", Type: repo.TypeNumber, Category: categorySecurity, Description: "Requests per hour"},
	}
}
