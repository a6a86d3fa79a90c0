package events

import "time"

// Tipos de PickEvent
const (
	PickCreated     = "created"
	PickSettled     = "settled"
	PickRescheduled = "rescheduled"
	PickDeleted     = "deleted"
)

// Evento publicado no tópico "pick_events" a cada mutação de um pick
type PickEvent struct {
	Type      string    `json:"type"` // created | settled | rescheduled | deleted
	PickID    string    `json:"pick_id"`
	OwnerID   string    `json:"owner_id"`
	Informant string    `json:"informant"`
	Outcome   string    `json:"outcome"` // "True" | "False" | "Pending"
	Revision  int64     `json:"revision"`
	Ts        time.Time `json:"ts"`
}
