package dto

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/shared/errs"
	"github.com/radieske/pick-control/internal/shared/validation"
)

var validate = validation.New()

var messages = validation.Messages{"outcome": "must be True, False or Pending"}

func init() {
	_ = validate.RegisterValidation("outcome", func(fl validator.FieldLevel) bool {
		return pick.KnownOutcome(fl.Field().String())
	})
}

// CreatePickRequest é o corpo de POST /apuestas, com os nomes de campo do app
type CreatePickRequest struct {
	Apuesta          string           `json:"Apuesta" validate:"required,max=500"`
	Informante       string           `json:"Informante" validate:"required,max=120"`
	TipoDeApuesta    string           `json:"TipoDeApuesta" validate:"max=200"`
	Casa             string           `json:"Casa" validate:"required,max=120"`
	Acierto          string           `json:"Acierto" validate:"omitempty,outcome"`
	CantidadApostada *decimal.Decimal `json:"CantidadApostada"` // ausente = 0
	Cuota            *decimal.Decimal `json:"Cuota"`            // ausente = 1
	Fecha            *time.Time       `json:"Fecha"`
}

// Validate checa a forma do corpo; limites numéricos ficam em pick.Validate
func (r CreatePickRequest) Validate() error {
	r.Apuesta = strings.TrimSpace(r.Apuesta)
	r.Informante = strings.TrimSpace(r.Informante)
	r.Casa = strings.TrimSpace(r.Casa)
	return validation.Translate(validate.Struct(r), messages)
}

// ToPick converte o corpo no modelo de domínio, aplicando os defaults de stake e odds
func (r CreatePickRequest) ToPick(ownerID string, now time.Time) pick.Pick {
	p := pick.Pick{
		OwnerID:     ownerID,
		Description: r.Apuesta,
		Informant:   r.Informante,
		BetType:     pick.BetType(r.TipoDeApuesta),
		Bookmaker:   r.Casa,
		Outcome:     pick.ParseOutcome(r.Acierto),
		Stake:       decimal.Zero,
		Odds:        decimal.NewFromInt(1),
	}
	if r.CantidadApostada != nil {
		p.Stake = *r.CantidadApostada
	}
	if r.Cuota != nil {
		p.Odds = *r.Cuota
	}
	if r.Fecha != nil {
		p.PlacedAt = *r.Fecha
	}
	p.Normalize(now)
	return p
}

// UpdatePickRequest é o corpo de PUT /apuesta/{id}; ao menos um campo é obrigatório
type UpdatePickRequest struct {
	Acierto *string    `json:"Acierto" validate:"omitempty,outcome"`
	Fecha   *time.Time `json:"Fecha"`
}

func (r UpdatePickRequest) Validate() error {
	if r.Acierto == nil && r.Fecha == nil {
		return errs.Invalid("Acierto", "Acierto or Fecha required")
	}
	if r.Fecha != nil && r.Fecha.IsZero() {
		return errs.Invalid("Fecha", "invalid date")
	}
	return validation.Translate(validate.Struct(r), messages)
}
