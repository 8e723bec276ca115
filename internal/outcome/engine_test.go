package outcome

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/anoncasino/internal/money"
)

// seqRand replays fixed draws in order.
type seqRand struct {
	mu    sync.Mutex
	draws []int
}

func (s *seqRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.draws) == 0 {
		panic("seqRand exhausted")
	}

	v := s.draws[0]
	s.draws = s.draws[1:]

	return v % n
}

func fixed(draws ...int) Rand { return &seqRand{draws: draws} }

func TestPlayRoulette(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		draw   int
		params BetParams
		stake  money.Amount
		want   money.Amount
	}{
		{
			name:   "red on red pays even money less edge",
			draw:   1,
			params: BetParams{Type: "color", Value: "red"},
			stake:  money.MustParse("10"),
			want:   money.MustParse("19.73"),
		},
		{
			name:   "black on red loses",
			draw:   3,
			params: BetParams{Type: "color", Value: "black"},
			stake:  money.MustParse("10"),
			want:   0,
		},
		{
			name:   "straight number",
			draw:   17,
			params: BetParams{Type: "number", Value: float64(17)},
			stake:  money.MustParse("10"),
			want:   money.MustParse("340.82"),
		},
		{
			name:   "fractional number never matches",
			draw:   17,
			params: BetParams{Type: "number", Value: 17.5},
			stake:  money.MustParse("10"),
			want:   0,
		},
		{
			name:   "string number never matches",
			draw:   17,
			params: BetParams{Type: "number", Value: "17"},
			stake:  money.MustParse("10"),
			want:   0,
		},
		{
			name:   "odd",
			draw:   35,
			params: BetParams{Type: "even_odd", Value: "odd"},
			stake:  money.MustParse("10"),
			want:   money.MustParse("19.73"),
		},
		{
			name:   "high",
			draw:   19,
			params: BetParams{Type: "high_low", Value: "high"},
			stake:  money.MustParse("10"),
			want:   money.MustParse("19.73"),
		},
		{
			name:   "low misses on 19",
			draw:   19,
			params: BetParams{Type: "high_low", Value: "low"},
			stake:  money.MustParse("10"),
			want:   0,
		},
		{
			name:   "unknown bet type",
			draw:   5,
			params: BetParams{Type: "split", Value: "5-6"},
			stake:  money.MustParse("10"),
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(DefaultTable(), fixed(tt.draw))
			res := e.Play(Roulette, tt.params, tt.stake)

			assert.Equal(t, tt.want, res.Payout)
			assert.True(t, res.HouseEdge.Equal(decimal.RequireFromString("0.027")))
			assert.Equal(t, tt.draw, res.Detail["winning_number"])
			assert.Equal(t, tt.want > 0, res.Detail["won"])
		})
	}
}

func TestRouletteZeroNeverMatchesOutsideBets(t *testing.T) {
	t.Parallel()

	bets := []BetParams{
		{Type: "color", Value: "red"},
		{Type: "color", Value: "black"},
		{Type: "color", Value: "green"},
		{Type: "even_odd", Value: "even"},
		{Type: "even_odd", Value: "odd"},
		{Type: "high_low", Value: "low"},
		{Type: "high_low", Value: "high"},
	}

	for _, b := range bets {
		e := NewEngine(DefaultTable(), fixed(0))
		res := e.Play(Roulette, b, money.MustParse("10"))

		assert.Zero(t, res.Payout, "bet %s", b.Label())
		assert.Equal(t, "green", res.Detail["winning_color"])
	}
}

func TestRouletteStraightAlwaysPays35BeforeEdge(t *testing.T) {
	t.Parallel()

	table := DefaultTable().WithEdge(Roulette, decimal.Zero)

	for n := 0; n <= 36; n++ {
		e := NewEngine(table, fixed(n))
		res := e.Play(Roulette, BetParams{Type: "number", Value: float64(n)}, money.MustParse("2"))

		assert.Equal(t, money.MustParse("70"), res.Payout, "number %d", n)
	}
}

func TestPlayDice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		draws  []int
		params BetParams
		want   money.Amount
	}{
		{"total 9 pays 8x", []int{3, 4}, BetParams{Type: "total", Value: float64(9)}, money.MustParse("79.02")},
		{"total 2 pays 30x", []int{0, 0}, BetParams{Type: "total", Value: float64(2)}, money.MustParse("295.94")},
		{"total 12 pays 30x", []int{5, 5}, BetParams{Type: "total", Value: float64(12)}, money.MustParse("295.94")},
		{"total miss", []int{0, 1}, BetParams{Type: "total", Value: float64(7)}, 0},
		{"seven is neither high nor low", []int{2, 3}, BetParams{Type: "high_low", Value: "high"}, 0},
		{"low", []int{0, 4}, BetParams{Type: "high_low", Value: "low"}, money.MustParse("19.86")},
		{"even", []int{1, 1}, BetParams{Type: "even_odd", Value: "even"}, money.MustParse("19.86")},
		{"missing value", []int{1, 1}, BetParams{Type: "even_odd"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(DefaultTable(), fixed(tt.draws...))
			res := e.Play(Dice, tt.params, money.MustParse("10"))

			assert.Equal(t, tt.want, res.Payout)
			assert.Equal(t, tt.draws[0]+tt.draws[1]+2, res.Detail["total"])
		})
	}
}

func TestDiceExactMultipliers(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	assert.True(t, table.DiceTotals[9].Equal(decimal.NewFromInt(8)))
	assert.True(t, table.DiceTotals[2].Equal(decimal.NewFromInt(30)))
	assert.True(t, table.DiceTotals[12].Equal(decimal.NewFromInt(30)))
}

func TestPlayBlackjack(t *testing.T) {
	t.Parallel()

	cards := func(values ...int) []Card {
		out := make([]Card, len(values))
		for i, v := range values {
			out[i] = Card{Value: v}
		}

		return out
	}

	tests := []struct {
		name       string
		player     []Card
		dealer     []Card
		want       money.Amount
		resultType string
	}{
		{"push refunds stake", cards(10, 8), cards(9, 9), money.MustParse("10"), "push"},
		{"push at 21 with three cards", cards(7, 7, 7), cards(10, 11), money.MustParse("10"), "push"},
		{"natural", cards(11, 10), cards(10, 9), money.MustParse("24.92"), "blackjack"},
		{"player bust loses even if dealer busts", cards(10, 10, 5), cards(10, 10, 6), 0, "bust"},
		{"dealer bust", cards(10, 8), cards(10, 6, 9), money.MustParse("19.95"), "dealer_bust"},
		{"higher total", cards(10, 9), cards(10, 7), money.MustParse("19.95"), "win"},
		{"lower total", cards(10, 6), cards(10, 7), 0, "lose"},
		{"no cards is a push", nil, nil, money.MustParse("10"), "push"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(DefaultTable(), fixed())
			res := e.Play(Blackjack, BetParams{PlayerCards: tt.player, DealerCards: tt.dealer}, money.MustParse("10"))

			assert.Equal(t, tt.want, res.Payout)
			assert.Equal(t, tt.resultType, res.Detail["result_type"])
		})
	}
}

func TestPlaySlots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draws []int
		want  money.Amount
	}{
		{"three sevens", []int{6, 6, 6}, money.MustParse("950.50")},
		{"three cherries", []int{0, 0, 0}, money.MustParse("48")},
		{"pair", []int{0, 3, 0}, money.MustParse("19.50")},
		{"no match", []int{0, 1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(DefaultTable(), fixed(tt.draws...))
			res := e.Play(Slots, BetParams{}, money.MustParse("10"))

			assert.Equal(t, tt.want, res.Payout)
			assert.Len(t, res.Detail["reels"], 3)
		})
	}
}

func TestHouseEdgeNeverTouchesPushOrLoss(t *testing.T) {
	t.Parallel()

	table := DefaultTable().WithEdge(Blackjack, decimal.RequireFromString("0.5"))
	e := NewEngine(table, fixed())

	push := e.Play(Blackjack, BetParams{PlayerCards: []Card{{Value: 10}}, DealerCards: []Card{{Value: 10}}}, 1234)
	assert.Equal(t, money.Amount(1234), push.Payout)

	loss := e.Play(Blackjack, BetParams{PlayerCards: []Card{{Value: 9}}, DealerCards: []Card{{Value: 10}}}, 1234)
	assert.Zero(t, loss.Payout)
}

func TestUnknownGamePaysNothing(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTable(), fixed())
	res := e.Play(Game("poker"), BetParams{Type: "anything"}, 500)

	assert.Zero(t, res.Payout)
	assert.Equal(t, false, res.Detail["won"])
	assert.True(t, res.HouseEdge.Equal(decimal.RequireFromString("0.05")))
}

func TestBetParamsFromJSON(t *testing.T) {
	t.Parallel()

	var p BetParams
	require.NoError(t, json.Unmarshal([]byte(`{"type":"number","value":7}`), &p))

	e := NewEngine(DefaultTable(), fixed(7))
	res := e.Play(Roulette, p, 100)

	assert.Equal(t, money.Amount(3408), res.Payout)
	assert.Equal(t, "number:7", p.Label())
}

func TestParseGame(t *testing.T) {
	t.Parallel()

	g, err := ParseGame(" Roulette ")
	require.NoError(t, err)
	assert.Equal(t, Roulette, g)

	_, err = ParseGame("poker")
	require.Error(t, err)
}

func TestSystemRandConcurrentUse(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTable(), nil)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				res := e.Play(Dice, BetParams{Type: "total", Value: float64(7)}, 100)
				total, _ := res.Detail["total"].(int)
				assert.GreaterOrEqual(t, total, 2)
				assert.LessOrEqual(t, total, 12)
			}
		}()
	}

	wg.Wait()
}

func TestParseBetParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		malformed bool
		wantType  string
		wantCards []int
	}{
		{name: "absent", raw: ``},
		{name: "null", raw: `null`},
		{name: "unknown keys ignored", raw: `{"type":"color","value":"red","odds":3}`, wantType: "color"},
		{name: "array value kept", raw: `{"type":"split","value":[1,2]}`, wantType: "split"},
		{name: "string card values", raw: `{"player_cards":[{"value":"10"},{"value":"7"}]}`, wantCards: []int{10, 7}},
		{name: "rank only cards", raw: `{"player_cards":[{"rank":"A","suit":"hearts"},{"rank":"Q"}]}`, wantCards: []int{11, 10}},
		{name: "face card named in value", raw: `{"player_cards":[{"value":"K"}]}`, wantCards: []int{10}},
		{name: "fractional card value", raw: `{"player_cards":[{"value":2.5}]}`, wantCards: []int{0}},
		{name: "non object", raw: `"red"`, malformed: true},
		{name: "number", raw: `42`, malformed: true},
		{name: "cards not a list", raw: `{"player_cards":"ace"}`, malformed: true},
		{name: "type not a string", raw: `{"type":7}`, malformed: true},
		{name: "broken json", raw: `{"type":`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := ParseBetParams(json.RawMessage(tt.raw))

			assert.Equal(t, tt.malformed, p.Malformed())
			assert.Equal(t, tt.wantType, p.Type)

			if tt.wantCards != nil {
				require.Len(t, p.PlayerCards, len(tt.wantCards))

				for i, v := range tt.wantCards {
					assert.Equal(t, v, p.PlayerCards[i].Value, "card %d", i)
				}
			}
		})
	}
}

func TestMalformedParamsPayNothing(t *testing.T) {
	t.Parallel()

	p := ParseBetParams(json.RawMessage(`"red"`))
	require.True(t, p.Malformed())

	for _, g := range Games {
		t.Run(string(g), func(t *testing.T) {
			t.Parallel()

			e := NewEngine(DefaultTable(), fixed())
			res := e.Play(g, p, money.MustParse("10"))

			assert.Zero(t, res.Payout)
			assert.Equal(t, false, res.Detail["won"])
			assert.True(t, res.HouseEdge.Equal(DefaultTable().Edge(g)))
		})
	}
}

func TestStringCardsSettleLikeNumbers(t *testing.T) {
	t.Parallel()

	p := ParseBetParams(json.RawMessage(`{"player_cards":[{"value":"10"},{"value":"9"}],"dealer_cards":[{"value":"10"},{"value":"7"}]}`))

	e := NewEngine(DefaultTable(), fixed())
	res := e.Play(Blackjack, p, money.MustParse("10"))

	assert.Equal(t, money.MustParse("19.95"), res.Payout)
	assert.Equal(t, "win", res.Detail["result_type"])
}
