package client

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded indica que um fetch mais novo começou ou já entregou dado mais recente
var ErrSuperseded = errors.New("superseded by a newer fetch")

// Latest garante que só o fetch mais recente entrega resultado.
// Um Fetch novo cancela o que estiver em voo; uma resposta com revisão menor
// que a última entregue é descartada uma vez e vira a nova base, já que o
// contador do servidor pode ter sido zerado. Revisão 0 significa desconhecida
// (Redis fora) e é entregue sem mexer na base.
type Latest[T any] struct {
	revision func(T) int64

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	lastRev int64
}

// NewLatest recebe como extrair a revisão do resultado; nil desliga a checagem
func NewLatest[T any](revision func(T) int64) *Latest[T] {
	return &Latest[T]{revision: revision}
}

func (l *Latest[T]) Fetch(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	my := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	v, err := fn(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if my != l.seq {
		cancel()
		return zero, ErrSuperseded
	}
	l.cancel = nil
	cancel()
	if err != nil {
		return zero, err
	}
	if l.revision != nil {
		rev := l.revision(v)
		switch {
		case rev == 0:
		case rev < l.lastRev:
			l.lastRev = rev
			return zero, ErrSuperseded
		default:
			l.lastRev = rev
		}
	}
	return v, nil
}

// Stop cancela o fetch em voo, se houver
func (l *Latest[T]) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
}
