package stats

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
)

// InformantDetail é o resumo exibido na tela de detalhe de um informante
type InformantDetail struct {
	Informant string
	Picks     []pick.Pick // ordem cronológica
	Total     int
	Wins      int
	Losses    int
	Pending   int
	WinPct    decimal.Decimal
	Profit    decimal.Decimal
	// Evolution é o lucro acumulado após cada pick resolvido
	Evolution []decimal.Decimal
}

// Informant monta o detalhe de um informante a partir dos seus picks
func Informant(name string, picks []pick.Pick) InformantDetail {
	ordered := Chronological(picks)
	sum := Aggregate(ordered)

	d := InformantDetail{
		Informant: name,
		Picks:     ordered,
		Total:     sum.TotalCount,
		Wins:      sum.Wins,
		Losses:    sum.Losses,
		Pending:   sum.TotalCount - sum.SettledCount,
		WinPct:    sum.WinPct,
		Profit:    sum.TotalProfit,
		Evolution: make([]decimal.Decimal, 0, sum.SettledCount),
	}

	running := decimal.Zero
	for _, p := range ordered {
		if !p.Outcome.Settled() {
			continue
		}
		running = running.Add(PickProfit(p))
		d.Evolution = append(d.Evolution, running)
	}
	return d
}
