package stats

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
)

const (
	// WindowSize é o número de picks resolvidos mais recentes considerados na análise
	WindowSize = 30
	// TrendWindow é o tamanho de cada sub-janela usada na tendência
	TrendWindow = 14
	// DaysPerMonth é o mês fixo usado na projeção
	DaysPerMonth = 30
)

// RiskLevel classifica o informante a partir de acerto, ROI e tendência
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

var (
	lowHitRate    = decimal.RequireFromString("0.65")
	lowROI        = decimal.NewFromInt(15)
	mediumHitRate = decimal.RequireFromString("0.50")
	mediumROI     = decimal.NewFromInt(5)
)

// Assumptions são os parâmetros informados pelo usuário para a projeção mensal
type Assumptions struct {
	StakePerBet decimal.Decimal
	BetsPerDay  decimal.Decimal
}

// DefaultAssumptions espelha os valores iniciais da tela de análise (10 por aposta, 1 aposta/dia)
func DefaultAssumptions() Assumptions {
	return Assumptions{StakePerBet: decimal.NewFromInt(10), BetsPerDay: decimal.NewFromInt(1)}
}

// Analysis é o resultado da análise de rentabilidade de um informante
type Analysis struct {
	Informant              string
	SampleSize             int // picks resolvidos na janela
	Wins                   int
	HitRate                decimal.Decimal // fração em [0,1]
	ROI                    decimal.Decimal // percentual
	Trend                  decimal.Decimal // ROI(últimos 14) - ROI(14 anteriores)
	DailyBetRate           decimal.Decimal
	AverageOdds            decimal.Decimal
	ExpectedWinningBets    decimal.Decimal
	ProjectedMonthlyStake  decimal.Decimal
	ProjectedMonthlyProfit decimal.Decimal
	RiskLevel              RiskLevel
}

// Analyze calcula acerto, ROI, tendência e a projeção mensal sobre os 30 picks
// resolvidos mais recentes, ordenados por PlacedAt.
func Analyze(informant string, picks []pick.Pick, a Assumptions) Analysis {
	window := Window(picks)
	n := len(window)

	monthlyBets := a.BetsPerDay.Mul(decimal.NewFromInt(DaysPerMonth))
	out := Analysis{
		Informant:              informant,
		SampleSize:             n,
		HitRate:                decimal.Zero,
		ROI:                    decimal.Zero,
		Trend:                  decimal.Zero,
		DailyBetRate:           decimal.Zero,
		AverageOdds:            decimal.Zero,
		ExpectedWinningBets:    decimal.Zero,
		ProjectedMonthlyStake:  a.StakePerBet.Mul(monthlyBets),
		ProjectedMonthlyProfit: decimal.Zero,
		RiskLevel:              RiskHigh,
	}
	if n == 0 {
		return out
	}

	oddsSum := decimal.Zero
	for _, p := range window {
		if p.Outcome == pick.Won {
			out.Wins++
		}
		oddsSum = oddsSum.Add(oddsOrOne(p.Odds))
	}
	size := decimal.NewFromInt(int64(n))

	out.HitRate = ratio(decimal.NewFromInt(int64(out.Wins)), size)
	out.ROI = ROI(window)
	out.Trend = Trend(window)
	out.DailyBetRate = size.Div(decimal.NewFromInt(DaysPerMonth))
	out.AverageOdds = oddsSum.Div(size)

	// convenção líquida: cada acerto rende stake*(odds-1), cada erro custa stake
	out.ExpectedWinningBets = monthlyBets.Mul(out.HitRate)
	losingBets := monthlyBets.Sub(out.ExpectedWinningBets)
	out.ProjectedMonthlyProfit = out.ExpectedWinningBets.Mul(a.StakePerBet).Mul(out.AverageOdds.Sub(one)).
		Sub(losingBets.Mul(a.StakePerBet))

	out.RiskLevel = Risk(out.HitRate, out.ROI, out.Trend)
	return out
}

// Window retorna os últimos WindowSize picks resolvidos em ordem cronológica
func Window(picks []pick.Pick) []pick.Pick {
	settled := Chronological(Settled(picks))
	if len(settled) > WindowSize {
		settled = settled[len(settled)-WindowSize:]
	}
	return settled
}

// ROI retorna lucro/stake*100 de uma lista de picks resolvidos
func ROI(picks []pick.Pick) decimal.Decimal {
	staked, profit := decimal.Zero, decimal.Zero
	for _, p := range picks {
		if !p.Outcome.Settled() {
			continue
		}
		staked = staked.Add(p.Stake)
		profit = profit.Add(PickProfit(p))
	}
	return pct(profit, staked)
}

// Trend compara o ROI dos últimos TrendWindow picks com o dos TrendWindow anteriores.
// window deve estar em ordem cronológica.
func Trend(window []pick.Pick) decimal.Decimal {
	n := len(window)
	recentStart := max(0, n-TrendWindow)
	prevStart := max(0, n-2*TrendWindow)
	return ROI(window[recentStart:]).Sub(ROI(window[prevStart:recentStart]))
}

// Risk aplica os limiares em ordem de prioridade; o primeiro que casar vence
func Risk(hitRate, roi, trend decimal.Decimal) RiskLevel {
	switch {
	case hitRate.GreaterThan(lowHitRate) && roi.GreaterThan(lowROI) && !trend.IsNegative():
		return RiskLow
	case hitRate.GreaterThan(mediumHitRate) && roi.GreaterThan(mediumROI):
		return RiskMedium
	default:
		return RiskHigh
	}
}
