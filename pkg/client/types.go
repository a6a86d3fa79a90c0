package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// Literais de Acierto aceitos pela API
const (
	Won     = "True"
	Lost    = "False"
	Pending = "Pending"
)

type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Session é o resultado de login/registro; o token vai no header das chamadas seguintes
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type Pick struct {
	ID               string          `json:"_id"`
	Apuesta          string          `json:"Apuesta"`
	Informante       string          `json:"Informante"`
	TipoDeApuesta    string          `json:"TipoDeApuesta"`
	Casa             string          `json:"Casa"`
	Acierto          string          `json:"Acierto"`
	CantidadApostada decimal.Decimal `json:"CantidadApostada"`
	Cuota            decimal.Decimal `json:"Cuota"`
	Ganancia         decimal.Decimal `json:"Ganancia"`
	Fecha            time.Time       `json:"Fecha"`
	Owner            string          `json:"owner"`
}

type NewPick struct {
	Apuesta          string           `json:"Apuesta"`
	Informante       string           `json:"Informante"`
	TipoDeApuesta    string           `json:"TipoDeApuesta,omitempty"`
	Casa             string           `json:"Casa"`
	Acierto          string           `json:"Acierto,omitempty"`
	CantidadApostada *decimal.Decimal `json:"CantidadApostada,omitempty"`
	Cuota            *decimal.Decimal `json:"Cuota,omitempty"`
	Fecha            *time.Time       `json:"Fecha,omitempty"`
}

type PickList struct {
	Picks    []Pick `json:"picks"`
	Revision int64  `json:"revision"`
}

type InformantDetail struct {
	Informante         string            `json:"informante"`
	Apuestas           []Pick            `json:"apuestas"`
	TotalApuestas      int               `json:"totalApuestas"`
	TotalAciertos      int               `json:"totalAciertos"`
	Ganancias          decimal.Decimal   `json:"ganancias"`
	PorcentajeAciertos decimal.Decimal   `json:"porcentajeAciertos"`
	Evolucion          []decimal.Decimal `json:"evolucion"`
	Revision           int64             `json:"revision"`
}

type Analysis struct {
	Informante             string          `json:"informante"`
	Muestra                int             `json:"muestra"`
	HitRate                decimal.Decimal `json:"hitRate"`
	ROI                    decimal.Decimal `json:"roi"`
	Trend                  decimal.Decimal `json:"trend"`
	DailyBetRate           decimal.Decimal `json:"dailyBetRate"`
	ProjectedMonthlyStake  decimal.Decimal `json:"projectedMonthlyStake"`
	ProjectedMonthlyProfit decimal.Decimal `json:"projectedMonthlyProfit"`
	RiskLevel              string          `json:"riskLevel"`
}

type RankingEntry struct {
	Informante         string          `json:"informante"`
	PorcentajeAciertos decimal.Decimal `json:"porcentajeAciertos"`
}
