package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
)

// DefaultTopN é o tamanho padrão do ranking
const DefaultTopN = 5

// RankEntry é uma posição do ranking de informantes
type RankEntry struct {
	Informant string
	WinPct    decimal.Decimal
	Settled   int
}

// Rank ordena informantes pela taxa de acerto sobre picks resolvidos.
// Informantes sem picks resolvidos ficam fora. Empate: nome ascendente.
func Rank(byInformant map[string][]pick.Pick, topN int) []RankEntry {
	if topN <= 0 {
		topN = DefaultTopN
	}

	out := make([]RankEntry, 0, len(byInformant))
	for name, picks := range byInformant {
		wins, settled := 0, 0
		for _, p := range picks {
			if !p.Outcome.Settled() {
				continue
			}
			settled++
			if p.Outcome == pick.Won {
				wins++
			}
		}
		if settled == 0 {
			continue
		}
		out = append(out, RankEntry{Informant: name, WinPct: winPct(wins, settled), Settled: settled})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].WinPct.Cmp(out[j].WinPct); c != 0 {
			return c > 0
		}
		return out[i].Informant < out[j].Informant
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
