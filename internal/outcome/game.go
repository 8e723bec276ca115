package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Game identifies one wagering game.
type Game string

const (
	Roulette  Game = "roulette"
	Blackjack Game = "blackjack"
	Slots     Game = "slots"
	Dice      Game = "dice"
)

// Games lists every supported game.
var Games = []Game{Roulette, Blackjack, Slots, Dice}

// ParseGame resolves a game name case-insensitively.
func ParseGame(s string) (Game, error) {
	g := Game(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Games {
		if g == known {
			return g, nil
		}
	}

	return "", fmt.Errorf("unknown game %q", s)
}

// Card is one dealt card; only its point value matters for settlement.
type Card struct {
	Value int    `json:"value"`
	Rank  string `json:"rank,omitempty"`
	Suit  string `json:"suit,omitempty"`
}

// UnmarshalJSON accepts the point value as a number, a numeric string or a
// rank name. Anything else counts as zero points.
func (c *Card) UnmarshalJSON(b []byte) error {
	var raw struct {
		Value json.RawMessage `json:"value"`
		Rank  any             `json:"rank"`
		Suit  any             `json:"suit"`
	}

	err := json.Unmarshal(b, &raw)
	if err != nil {
		return err
	}

	c.Rank, _ = raw.Rank.(string)
	c.Suit, _ = raw.Suit.(string)
	c.Value = cardPoints(raw.Value)

	if c.Value == 0 && c.Rank != "" {
		c.Value = rankPoints(c.Rank)
	}

	return nil
}

func cardPoints(raw json.RawMessage) int {
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return 0
	}

	switch v := v.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0
		}

		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return rankPoints(v)
		}

		return n
	default:
		return 0
	}
}

func rankPoints(rank string) int {
	switch strings.ToUpper(strings.TrimSpace(rank)) {
	case "A", "ACE":
		return 11
	case "K", "Q", "J", "KING", "QUEEN", "JACK":
		return 10
	default:
		n, err := strconv.Atoi(rank)
		if err != nil {
			return 0
		}

		return n
	}
}

// BetParams is the game-specific part of a wager as sent by the client.
// Value holds whatever JSON value the client chose (number or string).
type BetParams struct {
	Type        string `json:"type,omitempty"`
	Value       any    `json:"value,omitempty"`
	PlayerCards []Card `json:"player_cards,omitempty"`
	DealerCards []Card `json:"dealer_cards,omitempty"`

	malformed bool
}

// ParseBetParams decodes client bet parameters leniently. Unknown keys are
// ignored and absent input yields empty params. Input that is not an object
// of the expected shape never fails the wager; it resolves to params that
// pay nothing.
func ParseBetParams(raw json.RawMessage) BetParams {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return BetParams{}
	}

	var p BetParams

	err := json.Unmarshal(raw, &p)
	if err != nil {
		return BetParams{malformed: true}
	}

	return p
}

// Malformed reports whether the params came from undecodable input.
func (p BetParams) Malformed() bool { return p.malformed }

// Label is a short description of the bet used for round records.
func (p BetParams) Label() string {
	if p.Type == "" {
		return ""
	}

	if p.Value == nil {
		return p.Type
	}

	return fmt.Sprintf("%s:%v", p.Type, p.Value)
}

// intValue reports Value as an integer when it is an integral JSON number.
func (p BetParams) intValue() (int, bool) {
	switch v := p.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}

		return int(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return int(i), true
	default:
		return 0, false
	}
}

// stringValue reports Value when it is a JSON string.
func (p BetParams) stringValue() (string, bool) {
	s, ok := p.Value.(string)
	return s, ok
}

// Rand is the randomness the engine draws from. Implementations must be
// safe for concurrent use.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

type systemRand struct{}

func (systemRand) IntN(n int) int { return rand.IntN(n) }

// SystemRand draws from the math/rand/v2 global source.
func SystemRand() Rand { return systemRand{} }
