package topics

const (
	// Picks
	PickEvents = "pick_events"

	// DLQs
	PickEventsDLQ = "pick_events_dlq"

	// Redis Pub/Sub
	StatsBroadcast = "pick_stats_broadcast"
)
