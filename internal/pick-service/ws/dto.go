package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: ping (o feed é sempre do próprio dono, não há subscribe)
type ClientMsg struct {
	Type string `json:"type"`
}

// allOwners recebe as atualizações de todos os donos (sessões admin)
const allOwners = "*"
