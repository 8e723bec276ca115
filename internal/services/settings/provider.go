// Package settings resolves runtime tunables. A value comes from the
// settings table when present, else from the environment (the key upper-cased),
// else from the compiled defaults.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/outcome"
	repo "github.com/fastprodman/anoncasino/internal/repos/settings"
)

var ErrInvalidValue = errors.New("invalid setting value")

// Source tells where a resolved value came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceEnv      Source = "env"
	SourceDefault  Source = "default"
	SourceNone     Source = "none"
)

type Provider struct {
	repo     repo.Settings
	env      *viper.Viper
	defaults map[string]repo.Entry
}

// New builds a provider. A nil env reads the process environment.
func New(r repo.Settings, env *viper.Viper) *Provider {
	if env == nil {
		env = viper.New()
		env.AutomaticEnv()
	}

	defaults := make(map[string]repo.Entry)
	for _, e := range Defaults() {
		defaults[e.Key] = e
	}

	return &Provider{repo: r, env: env, defaults: defaults}
}

// Lookup returns the raw value of key and its source.
// Storage errors are logged and treated as a missing row.
func (p *Provider) Lookup(ctx context.Context, key string) (string, Source) {
	e, err := p.repo.Get(ctx, key)
	switch {
	case err == nil:
		return e.Value, SourceDatabase
	case !errors.Is(err, repo.ErrSettingNotFound):
		slog.WarnContext(ctx, "settings lookup failed, falling back to env", "key", key, "error", err)
	}

	// viper upper-cases the key for the environment lookup
	if p.env.IsSet(key) {
		return p.env.GetString(key), SourceEnv
	}

	if d, ok := p.defaults[key]; ok {
		return d.Value, SourceDefault
	}

	return "", SourceNone
}

// Decimal resolves key as a number, using fallback when nothing is set.
func (p *Provider) Decimal(ctx context.Context, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw, src := p.Lookup(ctx, key)
	if src == SourceNone {
		return fallback, nil
	}

	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q (%s)", ErrInvalidValue, key, raw, src)
	}

	return d, nil
}

// Amount resolves key as a money amount in major units.
func (p *Provider) Amount(ctx context.Context, key string, fallback money.Amount) (money.Amount, error) {
	d, err := p.Decimal(ctx, key, fallback.Decimal())
	if err != nil {
		return 0, err
	}

	return money.FromDecimal(d), nil
}

// Bool treats true, 1 and yes as true, case-insensitively.
func (p *Provider) Bool(ctx context.Context, key string, fallback bool) bool {
	raw, src := p.Lookup(ctx, key)
	if src == SourceNone {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (p *Provider) Int(ctx context.Context, key string, fallback int) (int, error) {
	d, err := p.Decimal(ctx, key, decimal.NewFromInt(int64(fallback)))
	if err != nil {
		return 0, err
	}

	return int(d.IntPart()), nil
}

// MinBet is the smallest stake accepted for game; 1.00 when nothing is set.
func (p *Provider) MinBet(ctx context.Context, game outcome.Game) (money.Amount, error) {
	return p.Amount(ctx, MinBetKey(game), money.MustParse(fallbackMinBet))
}

// Limits bounds an amount. A zero Max means unbounded.
type Limits struct {
	Min money.Amount `json:"min_amount"`
	Max money.Amount `json:"max_amount,omitempty"`
}

func (l Limits) Allows(a money.Amount) bool {
	return a >= l.Min && (l.Max == 0 || a <= l.Max)
}

func (p *Provider) DepositLimits(ctx context.Context) (Limits, error) {
	minDep, err := p.Amount(ctx, KeyMinDeposit, 0)
	if err != nil {
		return Limits{}, err
	}

	maxDep, err := p.Amount(ctx, KeyMaxDeposit, 0)
	if err != nil {
		return Limits{}, err
	}

	return Limits{Min: minDep, Max: maxDep}, nil
}

func (p *Provider) WithdrawLimits(ctx context.Context) (Limits, error) {
	minW, err := p.Amount(ctx, KeyMinWithdraw, 0)
	if err != nil {
		return Limits{}, err
	}

	return Limits{Min: minW}, nil
}

type RateLimit struct {
	Enabled   bool `json:"enabled"`
	PerMinute int  `json:"requests_per_minute"`
	PerHour   int  `json:"requests_per_hour"`
}

func (p *Provider) RateLimit(ctx context.Context) (RateLimit, error) {
	perMinute, err := p.Int(ctx, KeyRateLimitMinute, 60)
	if err != nil {
		return RateLimit{}, err
	}

	perHour, err := p.Int(ctx, KeyRateLimitHour, 1000)
	if err != nil {
		return RateLimit{}, err
	}

	return RateLimit{
		Enabled:   p.Bool(ctx, KeyRateLimitEnabled, true),
		PerMinute: perMinute,
		PerHour:   perHour,
	}, nil
}

// HouseEdgeTable returns base with every house_edge_<game> override applied.
// Edges outside [0, 1) are rejected.
func (p *Provider) HouseEdgeTable(ctx context.Context, base outcome.Table) (outcome.Table, error) {
	table := base

	for _, g := range outcome.Games {
		raw, src := p.Lookup(ctx, HouseEdgeKey(g))
		if src == SourceNone {
			continue
		}

		edge, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || edge.IsNegative() || edge.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return base, fmt.Errorf("%w: %s=%q", ErrInvalidValue, HouseEdgeKey(g), raw)
		}

		table = table.WithEdge(g, edge)
	}

	return table, nil
}

// Public returns the public settings with typed values. Defaults fill in
// public keys that have no row yet.
func (p *Provider) Public(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any)

	for _, d := range p.defaults {
		if d.IsPublic {
			raw, _ := p.Lookup(ctx, d.Key)
			out[d.Key] = TypedValue(repo.Entry{Value: raw, Type: d.Type})
		}
	}

	rows, err := p.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list public settings: %w", err)
	}

	for _, e := range rows {
		out[e.Key] = TypedValue(e)
	}

	return out, nil
}

// Set stores value for key in the settings table, keeping the default's
// metadata when the key is a known one.
func (p *Provider) Set(ctx context.Context, e repo.Entry) error {
	if d, ok := p.defaults[e.Key]; ok {
		if e.Type == "" {
			e.Type = d.Type
		}

		if e.Category == "" {
			e.Category = d.Category
			e.IsPublic = d.IsPublic
		}
	}

	if e.Type == "" {
		e.Type = repo.TypeString
	}

	if e.Category == "" {
		e.Category = "general"
	}

	if TypedValue(e) == nil {
		return fmt.Errorf("%w: %s=%q is not a %s", ErrInvalidValue, e.Key, e.Value, e.Type)
	}

	err := p.repo.Upsert(ctx, e)
	if err != nil {
		return fmt.Errorf("store setting: %w", err)
	}

	return nil
}

// EnsureDefaults seeds every default key that has no row yet.
func (p *Provider) EnsureDefaults(ctx context.Context) (int, error) {
	added, err := p.repo.InsertMissing(ctx, Defaults())
	if err != nil {
		return 0, fmt.Errorf("seed default settings: %w", err)
	}

	return added, nil
}

// TypedValue decodes e.Value according to e.Type. It returns nil when the
// value does not parse.
func TypedValue(e repo.Entry) any {
	switch e.Type {
	case repo.TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(e.Value)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no", "":
			return false
		default:
			return nil
		}
	case repo.TypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(e.Value), 64)
		if err != nil {
			return nil
		}

		return f
	case repo.TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(e.Value), &v); err != nil {
			return nil
		}

		return v
	default:
		return e.Value
	}
}
