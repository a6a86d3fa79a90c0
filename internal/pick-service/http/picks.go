package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/pick-service/dto"
	"github.com/radieske/pick-control/internal/pick-service/repo"
	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/metrics"
	"github.com/radieske/pick-control/pkg/contracts/events"
)

// listPicks retorna os picks do usuário (ou de um informante, via ?informante=)
func (s *Server) listPicks(w http.ResponseWriter, r *http.Request) {
	sc := scope(r.Context())

	var (
		ps  []pick.Pick
		err error
	)
	if name := r.URL.Query().Get("informante"); name != "" {
		ps, err = s.store.ListByInformant(r.Context(), sc, name)
	} else {
		ps, err = s.store.List(r.Context(), sc)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPicksResponse{
		Picks:    dto.FromPicks(ps),
		Revision: s.revision(r.Context(), sc.OwnerID),
	})
}

func (s *Server) createPick(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())

	var req dto.CreatePickRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	p := req.ToPick(sess.UserID, s.now())
	if err := p.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.store.Insert(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.afterMutation(r.Context(), events.PickCreated, created)

	writeJSON(w, http.StatusCreated, dto.PickMessageResponse{Message: "pick created", Pick: dto.FromPick(created)})
}

func (s *Server) getPick(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), scope(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromPick(p))
}

// updatePick grava Acierto e/ou Fecha de uma vez; os eventos saem só depois do sucesso
func (s *Server) updatePick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdatePickRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	var c repo.Changes
	if req.Acierto != nil {
		o := pick.ParseOutcome(*req.Acierto)
		c.Outcome = &o
	}
	c.PlacedAt = req.Fecha

	updated, err := s.store.Update(r.Context(), scope(r.Context()), id, c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c.Outcome != nil {
		s.afterMutation(r.Context(), events.PickSettled, updated)
	}
	if c.PlacedAt != nil {
		s.afterMutation(r.Context(), events.PickRescheduled, updated)
	}

	writeJSON(w, http.StatusOK, dto.FromPick(updated))
}

func (s *Server) deletePick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := s.store.Delete(r.Context(), scope(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.afterMutation(r.Context(), events.PickDeleted, deleted)

	writeJSON(w, http.StatusOK, dto.PickMessageResponse{Message: "pick deleted", Pick: dto.FromPick(deleted)})
}

// afterMutation incrementa a revisão do dono, publica o evento e avisa os clientes.
// Tudo aqui é best effort: a mutação já foi gravada.
func (s *Server) afterMutation(ctx context.Context, typ string, p pick.Pick) {
	metrics.PickMutations.WithLabelValues(typ).Inc()

	var rev int64
	if s.cache != nil {
		n, err := s.cache.Bump(ctx, p.OwnerID)
		if err != nil {
			s.log.Warn("revision bump failed", zap.String("owner", p.OwnerID), zap.Error(err))
		}
		rev = n
	}

	if s.publ != nil {
		err := s.publ.PublishPickEvent(ctx, events.PickEvent{
			Type:      typ,
			PickID:    p.ID,
			OwnerID:   p.OwnerID,
			Informant: p.Informant,
			Outcome:   p.Outcome.Wire(),
			Revision:  rev,
			Ts:        s.now().UTC(),
		})
		if err != nil {
			metrics.EventPublishErrors.Inc()
			s.log.Warn("publish pick event failed", zap.String("pick_id", p.ID), zap.Error(err))
		}
	}

	if s.notify != nil {
		err := s.notify.Publish(ctx, events.Broadcast{
			OwnerID: p.OwnerID,
			Update: events.StatsUpdate{
				Type:      events.TypePicksChanged,
				Informant: p.Informant,
				Revision:  rev,
				Ts:        s.now().UTC(),
			},
		})
		if err != nil {
			s.log.Warn("notify picks changed failed", zap.Error(err))
		}
	}
}

// revision devolve 0 quando o cache está fora; o cliente só compara valores crescentes
func (s *Server) revision(ctx context.Context, owner string) int64 {
	if s.cache == nil || owner == "" {
		return 0
	}
	rev, err := s.cache.Revision(ctx, owner)
	if err != nil {
		s.log.Warn("read revision failed", zap.Error(err))
		return 0
	}
	return rev
}
