package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/stats"
)

// PickResponse mantém os nomes de campo que o app móvel já consome
type PickResponse struct {
	ID               string          `json:"_id"`
	Apuesta          string          `json:"Apuesta"`
	Informante       string          `json:"Informante"`
	TipoDeApuesta    string          `json:"TipoDeApuesta"`
	Mercados         []string        `json:"Mercados,omitempty"`
	Casa             string          `json:"Casa"`
	Acierto          string          `json:"Acierto"`
	CantidadApostada decimal.Decimal `json:"CantidadApostada"`
	Cuota            decimal.Decimal `json:"Cuota"`
	Ganancia         decimal.Decimal `json:"Ganancia"`
	Fecha            time.Time       `json:"Fecha"`
	Owner            string          `json:"owner"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func FromPick(p pick.Pick) PickResponse {
	r := PickResponse{
		ID:               p.ID,
		Apuesta:          p.Description,
		Informante:       p.Informant,
		TipoDeApuesta:    string(p.BetType),
		Casa:             p.Bookmaker,
		Acierto:          p.Outcome.Wire(),
		CantidadApostada: p.Stake,
		Cuota:            p.Odds,
		Ganancia:         stats.Round2(stats.PickProfit(p)),
		Fecha:            p.PlacedAt,
		Owner:            p.OwnerID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.BetType.Combined() {
		r.Mercados = p.BetType.Legs()
	}
	return r
}

func FromPicks(ps []pick.Pick) []PickResponse {
	out := make([]PickResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromPick(p))
	}
	return out
}

type ListPicksResponse struct {
	Picks    []PickResponse `json:"picks"`
	Revision int64          `json:"revision"`
}

type PickMessageResponse struct {
	Message string       `json:"message"`
	Pick    PickResponse `json:"pick"`
}

// InformantResponse é o detalhe de GET /informante/{name}
type InformantResponse struct {
	Informante         string            `json:"informante"`
	Apuestas           []PickResponse    `json:"apuestas"`
	TotalApuestas      int               `json:"totalApuestas"`
	TotalAciertos      int               `json:"totalAciertos"`
	Perdidas           int               `json:"perdidas"`
	Pendientes         int               `json:"pendientes"`
	Ganancias          decimal.Decimal   `json:"ganancias"`
	PorcentajeAciertos decimal.Decimal   `json:"porcentajeAciertos"`
	Evolucion          []decimal.Decimal `json:"evolucion"`
	Revision           int64             `json:"revision"`
}

func FromInformant(d stats.InformantDetail, revision int64) InformantResponse {
	evo := make([]decimal.Decimal, 0, len(d.Evolution))
	for _, v := range d.Evolution {
		evo = append(evo, stats.Round2(v))
	}
	return InformantResponse{
		Informante:         d.Informant,
		Apuestas:           FromPicks(d.Picks),
		TotalApuestas:      d.Total,
		TotalAciertos:      d.Wins,
		Perdidas:           d.Losses,
		Pendientes:         d.Pending,
		Ganancias:          stats.Round2(d.Profit),
		PorcentajeAciertos: stats.Round2(d.WinPct),
		Evolucion:          evo,
		Revision:           revision,
	}
}

type InformantCount struct {
	Informante string `json:"informante"`
	Total      int    `json:"total"`
}

// GroupProfit é uma linha de lucro por informante ou casa
type GroupProfit struct {
	Nombre   string          `json:"nombre"`
	Ganancia decimal.Decimal `json:"ganancia"`
}

// SummaryResponse alimenta a tela "Mis Ganancias"
type SummaryResponse struct {
	TotalApuestas      int             `json:"totalApuestas"`
	Resueltas          int             `json:"resueltas"`
	Aciertos           int             `json:"aciertos"`
	Fallos             int             `json:"fallos"`
	PorcentajeAciertos decimal.Decimal `json:"porcentajeAciertos"`
	GananciaTotal      decimal.Decimal `json:"gananciaTotal"`
	TotalApostado      decimal.Decimal `json:"totalApostado"`
	ROI                decimal.Decimal `json:"roi"`
	PorInformante      []GroupProfit   `json:"porInformante"`
	PorCasa            []GroupProfit   `json:"porCasa"`
}

func FromSummary(s stats.Summary) SummaryResponse {
	return SummaryResponse{
		TotalApuestas:      s.TotalCount,
		Resueltas:          s.SettledCount,
		Aciertos:           s.Wins,
		Fallos:             s.Losses,
		PorcentajeAciertos: stats.Round2(s.WinPct),
		GananciaTotal:      stats.Round2(s.TotalProfit),
		TotalApostado:      stats.Round2(s.TotalStaked),
		ROI:                stats.Round2(s.ROI),
		PorInformante:      groups(s.ByInformant),
		PorCasa:            groups(s.ByBookmaker),
	}
}

// groups ordena por nome para a resposta ser estável
func groups(m map[string]decimal.Decimal) []GroupProfit {
	out := make([]GroupProfit, 0, len(m))
	for k, v := range m {
		out = append(out, GroupProfit{Nombre: k, Ganancia: stats.Round2(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out
}

type RankingEntry struct {
	Informante         string          `json:"informante"`
	PorcentajeAciertos decimal.Decimal `json:"porcentajeAciertos"`
	Resueltas          int             `json:"resueltas"`
}

func FromRanking(entries []stats.RankEntry) []RankingEntry {
	out := make([]RankingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, RankingEntry{
			Informante:         e.Informant,
			PorcentajeAciertos: stats.Round2(e.WinPct),
			Resueltas:          e.Settled,
		})
	}
	return out
}

// AnalysisResponse é uma linha da tela de análise de rentabilidade
type AnalysisResponse struct {
	Informante             string          `json:"informante"`
	Muestra                int             `json:"muestra"`
	Aciertos               int             `json:"aciertos"`
	HitRate                decimal.Decimal `json:"hitRate"`
	ROI                    decimal.Decimal `json:"roi"`
	Trend                  decimal.Decimal `json:"trend"`
	DailyBetRate           decimal.Decimal `json:"dailyBetRate"`
	CuotaPromedio          decimal.Decimal `json:"cuotaPromedio"`
	AciertosEsperados      decimal.Decimal `json:"aciertosEsperados"`
	ProjectedMonthlyStake  decimal.Decimal `json:"projectedMonthlyStake"`
	ProjectedMonthlyProfit decimal.Decimal `json:"projectedMonthlyProfit"`
	RiskLevel              string          `json:"riskLevel"`
}

func FromAnalysis(a stats.Analysis) AnalysisResponse {
	return AnalysisResponse{
		Informante:             a.Informant,
		Muestra:                a.SampleSize,
		Aciertos:               a.Wins,
		HitRate:                a.HitRate.Round(4),
		ROI:                    stats.Round2(a.ROI),
		Trend:                  stats.Round2(a.Trend),
		DailyBetRate:           a.DailyBetRate.Round(4),
		CuotaPromedio:          stats.Round2(a.AverageOdds),
		AciertosEsperados:      stats.Round2(a.ExpectedWinningBets),
		ProjectedMonthlyStake:  stats.Round2(a.ProjectedMonthlyStake),
		ProjectedMonthlyProfit: stats.Round2(a.ProjectedMonthlyProfit),
		RiskLevel:              string(a.RiskLevel),
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
