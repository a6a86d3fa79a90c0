package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/pick-service/dto"
	"github.com/radieske/pick-control/internal/pick-service/repo"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/kafka"
	"github.com/radieske/pick-control/internal/stats"
	"github.com/radieske/pick-control/pkg/contracts/events"
)

// MaxRetries é o número de novas tentativas antes de mandar a mensagem para a DLQ
const MaxRetries = 3

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Repo interface {
	ListByInformant(ctx context.Context, s repo.Scope, informant string) ([]pick.Pick, error)
}

type Cache interface {
	Revision(ctx context.Context, owner string) (int64, error)
	SetInformant(ctx context.Context, owner, informant string, e cache.Entry, ttl time.Duration) error
	DeleteInformant(ctx context.Context, owner, informant string) error
}

type Broadcaster interface {
	Publish(ctx context.Context, b events.Broadcast) error
}

// DLQ recebe a mensagem original quando as tentativas se esgotam
type DLQ interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Processor consome PickEvent do Kafka, recalcula o detalhe do informante,
// aquece o cache e avisa os hubs WebSocket via Redis Pub/Sub.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log         *zap.Logger
	Reader      Reader
	Repo        Repo
	Cache       Cache
	Broadcaster Broadcaster
	DLQ         DLQ
	CacheTTL    time.Duration

	// Backoff define a espera antes da tentativa n (1..MaxRetries)
	Backoff func(n int) time.Duration

	OnConsumed   func()       // métricas (counter++)
	OnRecomputed func()       // métricas
	OnError      func(string) // métricas por fase
}

func defaultBackoff(n int) time.Duration { return time.Duration(300*n) * time.Millisecond }

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			if !sleep(ctx, 500*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.HandleMessage(ctx, m)
	}
}

// HandleMessage processa uma mensagem com retry; falha definitiva vai para a DLQ
func (p *Processor) HandleMessage(ctx context.Context, m kafka.Message) {
	var ev events.PickEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.OwnerID == "" || ev.Informant == "" {
		p.Log.Warn("invalid pick event", zap.ByteString("value", m.Value), zap.Error(err))
		p.fail("decode")
		p.deadLetter(ctx, m)
		return
	}

	backoff := p.Backoff
	if backoff == nil {
		backoff = defaultBackoff
	}

	err := p.Process(ctx, ev)
	for i := 1; err != nil && i <= MaxRetries; i++ {
		p.Log.Warn("process pick event failed, retrying",
			zap.String("pick_id", ev.PickID), zap.Int("attempt", i), zap.Error(err))
		if !sleep(ctx, backoff(i)) {
			return
		}
		err = p.Process(ctx, ev)
	}
	if err != nil {
		p.Log.Error("process pick event gave up", zap.String("pick_id", ev.PickID), zap.Error(err))
		p.fail("process")
		p.deadLetter(ctx, m)
	}
}

// Process recalcula o detalhe do informante do evento.
// A revisão é lida antes dos picks, então o dado gravado nunca é mais velho que ela.
func (p *Processor) Process(ctx context.Context, ev events.PickEvent) error {
	rev, err := p.Cache.Revision(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("read revision: %w", err)
	}

	ps, err := p.Repo.ListByInformant(ctx, repo.Scope{OwnerID: ev.OwnerID}, ev.Informant)
	if err != nil {
		return fmt.Errorf("list picks: %w", err)
	}

	update := events.StatsUpdate{
		Type:      events.TypeStatsUpdated,
		Informant: ev.Informant,
		Revision:  rev,
		Ts:        time.Now().UTC(),
	}

	if len(ps) == 0 {
		// último pick apagado: o informante some
		if err := p.Cache.DeleteInformant(ctx, ev.OwnerID, ev.Informant); err != nil {
			return fmt.Errorf("drop cached informant: %w", err)
		}
	} else {
		payload, err := json.Marshal(dto.FromInformant(stats.Informant(ev.Informant, ps), rev))
		if err != nil {
			return fmt.Errorf("marshal informant: %w", err)
		}
		if err := p.Cache.SetInformant(ctx, ev.OwnerID, ev.Informant, cache.Entry{Revision: rev, Payload: payload}, p.CacheTTL); err != nil {
			return fmt.Errorf("cache informant: %w", err)
		}
		update.Payload = payload
	}

	if p.OnRecomputed != nil {
		p.OnRecomputed()
	}

	if p.Broadcaster != nil {
		// o cache já está certo; falha no aviso não reprocessa o evento
		if err := p.Broadcaster.Publish(ctx, events.Broadcast{OwnerID: ev.OwnerID, Update: update}); err != nil {
			p.Log.Warn("stats broadcast failed", zap.Error(err))
			p.fail("broadcast")
		}
	}
	return nil
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

// sleep espera d ou o cancelamento; false se o contexto acabou
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
