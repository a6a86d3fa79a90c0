package events

import (
	"encoding/json"
	"time"
)

// Tipos de mensagem enviados aos clientes do feed em tempo real
const (
	TypePicksChanged = "picks_changed"
	TypeStatsUpdated = "stats_updated"
)

// Mensagem entregue aos clientes WebSocket
type StatsUpdate struct {
	Type      string          `json:"type"` // picks_changed | stats_updated
	Informant string          `json:"informante,omitempty"`
	Revision  int64           `json:"revision"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Ts        time.Time       `json:"ts"`
}

// Envelope publicado no canal Redis "pick_stats_broadcast"; OwnerID roteia para as conexões do dono
type Broadcast struct {
	OwnerID string      `json:"owner_id"`
	Update  StatsUpdate `json:"update"`
}
