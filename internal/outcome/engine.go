package outcome

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/anoncasino/internal/money"
)

// Detail is the game-specific audit record of one resolved wager.
type Detail map[string]any

// Result of one resolved wager. Payout already has the house edge applied.
type Result struct {
	Payout    money.Amount
	HouseEdge decimal.Decimal
	Detail    Detail
}

// Won reports whether the wager returned more than its stake.
func (r Result) Won(stake money.Amount) bool {
	return r.Payout > stake
}

// Engine resolves wagers. It performs no I/O and holds no mutable state,
// so a single Engine may be shared by all goroutines.
type Engine struct {
	table Table
	rnd   Rand
}

// NewEngine builds an engine over table drawing from rnd. A nil rnd means
// SystemRand.
func NewEngine(table Table, rnd Rand) *Engine {
	if rnd == nil {
		rnd = SystemRand()
	}

	return &Engine{table: table, rnd: rnd}
}

// WithTable returns an engine sharing e's random source but using table.
func (e *Engine) WithTable(table Table) *Engine {
	return &Engine{table: table, rnd: e.rnd}
}

// Table returns the payout table in use.
func (e *Engine) Table() Table {
	return e.table
}

// Play resolves one wager. Unknown games and bet combinations resolve to a
// zero payout rather than an error.
func (e *Engine) Play(game Game, params BetParams, stake money.Amount) Result {
	edge := e.table.Edge(game)

	if params.Malformed() {
		return Result{Payout: 0, HouseEdge: edge, Detail: Detail{"bet_type": "unrecognised", "won": false}}
	}

	var (
		multiplier decimal.Decimal
		detail     Detail
	)

	switch game {
	case Roulette:
		multiplier, detail = e.roulette(params)
	case Blackjack:
		multiplier, detail = e.blackjack(params)
	case Slots:
		multiplier, detail = e.slots()
	case Dice:
		multiplier, detail = e.dice(params)
	default:
		multiplier, detail = decimal.Zero, Detail{"won": false}
	}

	payout := money.ApplyHouseEdge(stake, multiplier, edge)

	return Result{Payout: payout, HouseEdge: edge, Detail: detail}
}

func (e *Engine) roulette(p BetParams) (decimal.Decimal, Detail) {
	n := e.rnd.IntN(37)

	color := "black"
	switch {
	case n == 0:
		color = "green"
	case e.table.RedNumbers[n]:
		color = "red"
	}

	multiplier := decimal.Zero
	v, _ := p.stringValue()
	v = strings.ToLower(v)

	switch p.Type {
	case "number":
		if num, ok := p.intValue(); ok && num == n {
			multiplier = e.table.RouletteStraight
		}
	case "color":
		// zero is green and never matches red or black
		if n != 0 && v == color {
			multiplier = e.table.EvenMoney
		}
	case "even_odd":
		if n != 0 && ((v == "even" && n%2 == 0) || (v == "odd" && n%2 == 1)) {
			multiplier = e.table.EvenMoney
		}
	case "high_low":
		if (v == "low" && n >= 1 && n <= 18) || (v == "high" && n >= 19) {
			multiplier = e.table.EvenMoney
		}
	}

	return multiplier, Detail{
		"winning_number": n,
		"winning_color":  color,
		"bet_type":       p.Type,
		"bet_value":      p.Value,
		"won":            multiplier.IsPositive(),
	}
}

func cardTotal(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value
	}

	return total
}

func (e *Engine) blackjack(p BetParams) (decimal.Decimal, Detail) {
	player := cardTotal(p.PlayerCards)
	dealer := cardTotal(p.DealerCards)

	resultType := "lose"
	multiplier := decimal.Zero

	switch {
	case player > 21:
		resultType = "bust"
	case dealer > 21:
		resultType = "dealer_bust"
		multiplier = e.table.EvenMoney
	case player == 21 && len(p.PlayerCards) == 2:
		resultType = "blackjack"
		multiplier = e.table.BlackjackNatural
	case player > dealer:
		resultType = "win"
		multiplier = e.table.EvenMoney
	case player == dealer:
		resultType = "push"
		multiplier = decimal.NewFromInt(1)
	}

	cards := p.PlayerCards
	if cards == nil {
		cards = []Card{}
	}

	return multiplier, Detail{
		"player_total": player,
		"dealer_total": dealer,
		"player_cards": cards,
		"result_type":  resultType,
		"won":          multiplier.GreaterThan(decimal.NewFromInt(1)),
	}
}

func (e *Engine) slots() (decimal.Decimal, Detail) {
	symbols := e.table.SlotSymbols
	if len(symbols) == 0 {
		return decimal.Zero, Detail{"reels": []string{}, "won": false}
	}

	reels := make([]string, 3)
	for i := range reels {
		reels[i] = symbols[e.rnd.IntN(len(symbols))]
	}

	multiplier := decimal.Zero

	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		m, ok := e.table.SlotThreeOfKind[reels[0]]
		if !ok {
			m = e.table.SlotPair
		}

		multiplier = m
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		multiplier = e.table.SlotPair
	}

	return multiplier, Detail{"reels": reels, "won": multiplier.IsPositive()}
}

func (e *Engine) dice(p BetParams) (decimal.Decimal, Detail) {
	d1 := e.rnd.IntN(6) + 1
	d2 := e.rnd.IntN(6) + 1
	total := d1 + d2

	multiplier := decimal.Zero

	switch p.Type {
	case "total":
		if v, ok := p.intValue(); ok && v == total {
			multiplier = e.table.DiceTotals[total]
		}
	case "high_low":
		v, _ := p.stringValue()
		v = strings.ToLower(v)
		if (v == "low" && total <= 6) || (v == "high" && total >= 8) {
			multiplier = e.table.EvenMoney
		}
	case "even_odd":
		v, _ := p.stringValue()
		v = strings.ToLower(v)
		if (v == "even" && total%2 == 0) || (v == "odd" && total%2 == 1) {
			multiplier = e.table.EvenMoney
		}
	}

	return multiplier, Detail{
		"dice1":     d1,
		"dice2":     d2,
		"total":     total,
		"bet_type":  p.Type,
		"bet_value": p.Value,
		"won":       multiplier.IsPositive(),
	}
}
