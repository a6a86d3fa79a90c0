package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsCache guarda o contador de revisão por dono e o detalhe pronto de cada informante.
// O pick-service lê e o stats-worker aquece as mesmas chaves.
type StatsCache struct{ R *redis.Client }

func NewStatsCache(r *redis.Client) *StatsCache { return &StatsCache{R: r} }

// Entry é o valor guardado; só vale enquanto Revision bater com a revisão atual do dono
type Entry struct {
	Revision int64           `json:"revision"`
	Payload  json.RawMessage `json:"payload"`
}

func keyRevision(owner string) string { return "picks:rev:" + owner }

func keyInformant(owner, informant string) string {
	return fmt.Sprintf("stats:informant:%s:%s", owner, informant)
}

// Revision retorna a revisão atual; dono sem mutações está na revisão 0
func (c *StatsCache) Revision(ctx context.Context, owner string) (int64, error) {
	n, err := c.R.Get(ctx, keyRevision(owner)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump incrementa a revisão do dono a cada mutação
func (c *StatsCache) Bump(ctx context.Context, owner string) (int64, error) {
	return c.R.Incr(ctx, keyRevision(owner)).Result()
}

func (c *StatsCache) GetInformant(ctx context.Context, owner, informant string) (Entry, bool, error) {
	b, err := c.R.Get(ctx, keyInformant(owner, informant)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// SetInformant grava o detalhe sem sobrescrever uma revisão mais nova já presente
func (c *StatsCache) SetInformant(ctx context.Context, owner, informant string, e Entry, ttl time.Duration) error {
	key := keyInformant(owner, informant)
	cur, ok, err := c.GetInformant(ctx, owner, informant)
	if err != nil {
		return err
	}
	if ok && cur.Revision > e.Revision {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, ttl).Err()
}

func (c *StatsCache) DeleteInformant(ctx context.Context, owner, informant string) error {
	return c.R.Del(ctx, keyInformant(owner, informant)).Err()
}
