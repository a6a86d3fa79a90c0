package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPDuration mede a latência das rotas públicas, por rota chi
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pick_control",
		Name:      "http_request_duration_seconds",
		Help:      "Duração das requisições HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route", "status"})

	PickMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "pick_mutations_total",
		Help:      "Picks criados, resolvidos, reagendados e removidos.",
	}, []string{"type"})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "pick_event_publish_errors_total",
		Help:      "Falhas ao publicar eventos de pick no Kafka.",
	})

	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "stats_cache_requests_total",
		Help:      "Leituras do cache de detalhe de informante.",
	}, []string{"result"}) // hit | miss | error

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pick_control",
		Name:      "ws_connections",
		Help:      "Conexões WebSocket abertas.",
	})

	// worker
	WorkerConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "stats_worker_consumed_total",
		Help:      "Eventos lidos do tópico de picks.",
	})
	WorkerRecomputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "stats_worker_recomputed_total",
		Help:      "Detalhes de informante recalculados e gravados no cache.",
	})
	WorkerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "stats_worker_errors_total",
		Help:      "Erros do worker por etapa.",
	}, []string{"stage"}) // decode | process | dlq

	AuthLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pick_control",
		Name:      "auth_logins_total",
		Help:      "Tentativas de login por resultado.",
	}, []string{"result"})
)
