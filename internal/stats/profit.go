// Package stats reúne os cálculos de lucro, ROI, ranking e projeção sobre listas de picks.
// Todas as funções são puras e totais: entradas faltantes viram defaults e divisões por zero retornam 0.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Profit retorna o lucro líquido de um pick com precisão total.
// Won: stake*(odds-1); Lost: -stake; Pending (ou desconhecido): 0.
func Profit(stake, odds decimal.Decimal, outcome pick.Outcome) decimal.Decimal {
	switch outcome {
	case pick.Won:
		return stake.Mul(oddsOrOne(odds).Sub(one))
	case pick.Lost:
		return stake.Neg()
	default:
		return decimal.Zero
	}
}

// PickProfit é Profit aplicado aos campos do pick
func PickProfit(p pick.Pick) decimal.Decimal {
	return Profit(p.Stake, p.Odds, p.Outcome)
}

// Round2 arredonda para exibição; usar só na borda de apresentação
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// odds ausente (zero) equivale ao default armazenado de 1
func oddsOrOne(odds decimal.Decimal) decimal.Decimal {
	if odds.IsZero() {
		return one
	}
	return odds
}

// ratio calcula num/den, retornando 0 quando den é zero
func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// pct calcula num/den*100, retornando 0 quando den é zero
func pct(num, den decimal.Decimal) decimal.Decimal {
	return ratio(num, den).Mul(hundred)
}

// Chronological devolve uma cópia ordenada por PlacedAt (desempate por CreatedAt e ID)
func Chronological(picks []pick.Pick) []pick.Pick {
	out := make([]pick.Pick, len(picks))
	copy(out, picks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.PlacedAt.Equal(b.PlacedAt) {
			return a.PlacedAt.Before(b.PlacedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// Settled filtra os picks já resolvidos, mantendo a ordem
func Settled(picks []pick.Pick) []pick.Pick {
	out := make([]pick.Pick, 0, len(picks))
	for _, p := range picks {
		if p.Outcome.Settled() {
			out = append(out, p)
		}
	}
	return out
}
