package pick

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/shared/errs"
)

// Outcome é o resultado de um pick: pendente, ganho ou perdido
type Outcome int

const (
	Pending Outcome = iota
	Won
	Lost
)

// Literais usados pelo app móvel no campo Acierto
const (
	WirePending = "Pending"
	WireWon     = "True"
	WireLost    = "False"
)

// ParseOutcome aceita os literais do app e variações comuns.
// Qualquer valor desconhecido vira Pending.
func ParseOutcome(s string) Outcome {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "won", "win":
		return Won
	case "false", "lost", "lose", "loss":
		return Lost
	default:
		return Pending
	}
}

// KnownOutcome reporta se s é um literal reconhecido (inclusive Pending)
func KnownOutcome(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "won", "win", "false", "lost", "lose", "loss", "pending":
		return true
	}
	return false
}

// Wire retorna o literal usado na API ("True" | "False" | "Pending")
func (o Outcome) Wire() string {
	switch o {
	case Won:
		return WireWon
	case Lost:
		return WireLost
	default:
		return WirePending
	}
}

// Storage retorna o literal persistido na coluna outcome
func (o Outcome) Storage() string {
	switch o {
	case Won:
		return "WON"
	case Lost:
		return "LOST"
	default:
		return "PENDING"
	}
}

func (o Outcome) String() string { return o.Storage() }

// Settled reporta se o pick já foi resolvido
func (o Outcome) Settled() bool { return o == Won || o == Lost }

// FromStorage converte o literal da coluna outcome
func FromStorage(s string) Outcome {
	switch s {
	case "WON":
		return Won
	case "LOST":
		return Lost
	default:
		return Pending
	}
}

// LegSeparator separa os mercados de uma aposta combinada (ex: "Over 2.5 + Ambos marcam")
const LegSeparator = " + "

// BetType é o mercado apostado
type BetType string

// Legs retorna os mercados que compõem o tipo de aposta
func (b BetType) Legs() []string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil
	}
	parts := strings.Split(s, LegSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Combined reporta se o tipo tem mais de um mercado
func (b BetType) Combined() bool { return len(b.Legs()) > 1 }

// Pick é um registro de aposta de um informante
type Pick struct {
	ID          string
	OwnerID     string
	Description string
	Informant   string
	BetType     BetType
	Bookmaker   string
	Outcome     Outcome
	Stake       decimal.Decimal
	Odds        decimal.Decimal
	PlacedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize remove espaços das strings e aplica o default de PlacedAt
func (p *Pick) Normalize(now time.Time) {
	p.Description = strings.TrimSpace(p.Description)
	p.Informant = strings.TrimSpace(p.Informant)
	p.Bookmaker = strings.TrimSpace(p.Bookmaker)
	p.BetType = BetType(strings.TrimSpace(string(p.BetType)))
	if p.PlacedAt.IsZero() {
		p.PlacedAt = now
	}
}

// Validate confere os campos obrigatórios e os limites de stake e odds
func (p *Pick) Validate() error {
	switch {
	case p.Description == "":
		return errs.Invalid("Apuesta", "required")
	case p.Informant == "":
		return errs.Invalid("Informante", "required")
	case p.Bookmaker == "":
		return errs.Invalid("Casa", "required")
	case p.OwnerID == "":
		return errs.Invalid("owner", "required")
	case p.Stake.IsNegative():
		return errs.Invalid("CantidadApostada", "must be >= 0")
	case p.Odds.LessThan(decimal.NewFromInt(1)):
		return errs.Invalid("Cuota", "must be >= 1")
	}
	return nil
}
