package stats

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
)

// Summary é o agregado de uma coleção de picks
type Summary struct {
	TotalCount   int // inclui pendentes
	SettledCount int
	Wins         int
	Losses       int
	WinPct       decimal.Decimal // wins / settled * 100
	TotalProfit  decimal.Decimal
	TotalStaked  decimal.Decimal // soma do stake dos resolvidos
	ROI          decimal.Decimal // TotalProfit / TotalStaked * 100
	ByInformant  map[string]decimal.Decimal
	ByBookmaker  map[string]decimal.Decimal
}

// Aggregate reduz picks em totais e somas por informante e por casa
func Aggregate(picks []pick.Pick) Summary {
	s := Summary{
		TotalCount:  len(picks),
		TotalProfit: decimal.Zero,
		TotalStaked: decimal.Zero,
		ByInformant: make(map[string]decimal.Decimal),
		ByBookmaker: make(map[string]decimal.Decimal),
	}

	for _, p := range picks {
		profit := PickProfit(p)
		s.ByInformant[p.Informant] = sumOrZero(s.ByInformant, p.Informant).Add(profit)
		s.ByBookmaker[p.Bookmaker] = sumOrZero(s.ByBookmaker, p.Bookmaker).Add(profit)

		if !p.Outcome.Settled() {
			continue
		}
		s.SettledCount++
		s.TotalProfit = s.TotalProfit.Add(profit)
		s.TotalStaked = s.TotalStaked.Add(p.Stake)
		if p.Outcome == pick.Won {
			s.Wins++
		} else {
			s.Losses++
		}
	}

	s.WinPct = winPct(s.Wins, s.SettledCount)
	s.ROI = pct(s.TotalProfit, s.TotalStaked)
	return s
}

// GroupByInformant agrupa os picks pelo nome do informante, mantendo a ordem de entrada
func GroupByInformant(picks []pick.Pick) map[string][]pick.Pick {
	out := make(map[string][]pick.Pick)
	for _, p := range picks {
		out[p.Informant] = append(out[p.Informant], p)
	}
	return out
}

func winPct(wins, settled int) decimal.Decimal {
	return pct(decimal.NewFromInt(int64(wins)), decimal.NewFromInt(int64(settled)))
}

func sumOrZero(m map[string]decimal.Decimal, k string) decimal.Decimal {
	if v, ok := m[k]; ok {
		return v
	}
	return decimal.Zero
}
