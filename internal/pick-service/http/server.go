package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/pick-service/dto"
	"github.com/radieske/pick-control/internal/pick-service/repo"
	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/errs"
	"github.com/radieske/pick-control/internal/shared/metrics"
	"github.com/radieske/pick-control/pkg/contracts/events"
)

// Store é o armazenamento de picks consumido pelos handlers
type Store interface {
	List(ctx context.Context, s repo.Scope) ([]pick.Pick, error)
	ListByInformant(ctx context.Context, s repo.Scope, informant string) ([]pick.Pick, error)
	Insert(ctx context.Context, p pick.Pick) (pick.Pick, error)
	Get(ctx context.Context, s repo.Scope, id string) (pick.Pick, error)
	Update(ctx context.Context, s repo.Scope, id string, c repo.Changes) (pick.Pick, error)
	Delete(ctx context.Context, s repo.Scope, id string) (pick.Pick, error)
	Informants(ctx context.Context, s repo.Scope) ([]repo.InformantCount, error)
}

// StatsCache guarda revisão por dono e o detalhe de informante já calculado
type StatsCache interface {
	Revision(ctx context.Context, owner string) (int64, error)
	Bump(ctx context.Context, owner string) (int64, error)
	GetInformant(ctx context.Context, owner, informant string) (cache.Entry, bool, error)
	SetInformant(ctx context.Context, owner, informant string, e cache.Entry, ttl time.Duration) error
}

type Publisher interface {
	PublishPickEvent(ctx context.Context, e events.PickEvent) error
}

type Notifier interface {
	Publish(ctx context.Context, b events.Broadcast) error
}

// Deps agrupa as dependências do servidor; Cache, Publisher, Notifier e WS são opcionais
type Deps struct {
	Log       *zap.Logger
	Store     Store
	Cache     StatsCache
	Publisher Publisher
	Notifier  Notifier
	Verifier  *auth.Verifier
	WS        http.HandlerFunc
	CacheTTL  time.Duration
	Service   string
}

type Server struct {
	log      *zap.Logger
	store    Store
	cache    StatsCache
	publ     Publisher
	notify   Notifier
	verifier *auth.Verifier
	ws       http.HandlerFunc
	cacheTTL time.Duration
	service  string
	now      func() time.Time
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:      log,
		store:    d.Store,
		cache:    d.Cache,
		publ:     d.Publisher,
		notify:   d.Notifier,
		verifier: d.Verifier,
		ws:       d.WS,
		cacheTTL: d.CacheTTL,
		service:  d.Service,
		now:      time.Now,
	}
}

// Router retorna o roteador HTTP; todas as rotas exigem bearer token
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Instrument(s.service, s.log))
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(s.verifier))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))

		r.Get("/apuestas", s.listPicks)
		r.Post("/apuestas", s.createPick)
		r.Get("/apuesta/{id}", s.getPick)
		r.Put("/apuesta/{id}", s.updatePick)
		r.Delete("/apuestas/{id}", s.deletePick)

		r.Get("/informantes", s.listInformants)
		r.Get("/informante/{name}", s.informantDetail)

		r.Get("/estadisticas/resumen", s.summary)
		r.Get("/estadisticas/ranking", s.ranking)
		r.Get("/estadisticas/analisis", s.analysisList)
		r.Get("/estadisticas/analisis/{name}", s.analysisOne)
	})

	// WebSocket fica fora do Timeout: a conexão é longa
	if s.ws != nil {
		r.Get("/ws", s.ws)
	}
	return r
}

// scope deriva o filtro de dono da sessão; admin enxerga tudo
func scope(ctx context.Context) repo.Scope {
	sess, _ := auth.SessionFrom(ctx)
	return repo.Scope{OwnerID: sess.UserID, All: sess.IsAdmin()}
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	body := dto.ErrorResponse{Error: err.Error(), Field: errs.Field(err)}

	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		body.Error = ve.Error()
	case status == http.StatusNotFound:
		body.Error = "not found"
	case status >= 500:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errs.Invalid("", "bad json")
	}
	return nil
}
