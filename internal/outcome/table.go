package outcome

import "github.com/shopspring/decimal"

// Table carries every tunable number of the games so the engine itself
// stays free of constants.
type Table struct {
	HouseEdge        map[Game]decimal.Decimal
	DefaultHouseEdge decimal.Decimal

	EvenMoney decimal.Decimal

	RouletteStraight decimal.Decimal
	RedNumbers       map[int]bool

	BlackjackNatural decimal.Decimal

	SlotSymbols     []string
	SlotThreeOfKind map[string]decimal.Decimal
	SlotPair        decimal.Decimal

	DiceTotals map[int]decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultTable returns the stock house edges and payout tables.
func DefaultTable() Table {
	red := map[int]bool{}
	for _, n := range []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36} {
		red[n] = true
	}

	return Table{
		HouseEdge: map[Game]decimal.Decimal{
			Roulette:  d("0.027"),
			Blackjack: d("0.005"),
			Slots:     d("0.05"),
			Dice:      d("0.014"),
		},
		DefaultHouseEdge: d("0.05"),
		EvenMoney:        d("2"),
		RouletteStraight: d("35"),
		RedNumbers:       red,
		BlackjackNatural: d("2.5"),
		SlotSymbols:      []string{"🍒", "🍋", "🍊", "🍇", "⭐", "💎", "7️⃣"},
		SlotThreeOfKind: map[string]decimal.Decimal{
			"🍒":   d("5"),
			"🍋":   d("8"),
			"🍊":   d("10"),
			"🍇":   d("15"),
			"⭐":   d("25"),
			"💎":   d("50"),
			"7️⃣": d("100"),
		},
		SlotPair: d("2"),
		DiceTotals: map[int]decimal.Decimal{
			2: d("30"), 3: d("15"), 4: d("10"), 5: d("8"), 6: d("6"), 7: d("4"),
			8: d("6"), 9: d("8"), 10: d("10"), 11: d("15"), 12: d("30"),
		},
	}
}

// Edge returns the house edge configured for g.
func (t Table) Edge(g Game) decimal.Decimal {
	if e, ok := t.HouseEdge[g]; ok {
		return e
	}

	return t.DefaultHouseEdge
}

// WithEdge returns a copy of t with g's house edge replaced.
func (t Table) WithEdge(g Game, edge decimal.Decimal) Table {
	edges := make(map[Game]decimal.Decimal, len(t.HouseEdge)+1)
	for k, v := range t.HouseEdge {
		edges[k] = v
	}

	edges[g] = edge
	t.HouseEdge = edges

	return t
}
