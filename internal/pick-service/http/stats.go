package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/pick-control/internal/pick-service/dto"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/errs"
	"github.com/radieske/pick-control/internal/shared/metrics"
	"github.com/radieske/pick-control/internal/stats"
)

func (s *Server) listInformants(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Informants(r.Context(), scope(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]dto.InformantCount, 0, len(rows))
	for _, ic := range rows {
		out = append(out, dto.InformantCount{Informante: ic.Informant, Total: ic.Total})
	}
	writeJSON(w, http.StatusOK, out)
}

// informantDetail usa o cache quando a revisão guardada é a atual do dono
func (s *Server) informantDetail(w http.ResponseWriter, r *http.Request) {
	name, err := informantParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sc := scope(r.Context())
	cacheable := s.cache != nil && !sc.All

	var rev int64
	if cacheable {
		rev = s.revision(r.Context(), sc.OwnerID)
		e, ok, err := s.cache.GetInformant(r.Context(), sc.OwnerID, name)
		switch {
		case err != nil:
			metrics.StatsCache.WithLabelValues("error").Inc()
			s.log.Warn("stats cache read failed", zap.Error(err))
		case ok && e.Revision == rev:
			metrics.StatsCache.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(e.Payload)
			return
		default:
			metrics.StatsCache.WithLabelValues("miss").Inc()
		}
	}

	ps, err := s.store.ListByInformant(r.Context(), sc, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(ps) == 0 {
		s.writeError(w, r, fmt.Errorf("informant %q: %w", name, errs.ErrNotFound))
		return
	}

	resp := dto.FromInformant(stats.Informant(name, ps), rev)
	if cacheable {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.cache.SetInformant(r.Context(), sc.OwnerID, name, cache.Entry{Revision: rev, Payload: b}, s.cacheTTL); err != nil {
				s.log.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	ps, err := s.store.List(r.Context(), scope(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromSummary(stats.Aggregate(ps)))
}

func (s *Server) ranking(w http.ResponseWriter, r *http.Request) {
	top := stats.DefaultTopN
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errs.Invalid("top", "must be an integer"))
			return
		}
		top = n
	}

	ps, err := s.store.List(r.Context(), scope(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromRanking(stats.Rank(stats.GroupByInformant(ps), top)))
}

// analysisList analisa cada informante com ao menos um pick resolvido, em ordem de nome
func (s *Server) analysisList(w http.ResponseWriter, r *http.Request) {
	a, err := assumptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ps, err := s.store.List(r.Context(), scope(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	groups := stats.GroupByInformant(ps)
	names := make([]string, 0, len(groups))
	for name, g := range groups {
		if len(stats.Settled(g)) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]dto.AnalysisResponse, 0, len(names))
	for _, name := range names {
		out = append(out, dto.FromAnalysis(stats.Analyze(name, groups[name], a)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) analysisOne(w http.ResponseWriter, r *http.Request) {
	name, err := informantParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := assumptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ps, err := s.store.ListByInformant(r.Context(), scope(r.Context()), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(ps) == 0 {
		s.writeError(w, r, fmt.Errorf("informant %q: %w", name, errs.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, dto.FromAnalysis(stats.Analyze(name, ps, a)))
}

// informantParam devolve o nome decodificado. O chi roteia pelo RawPath quando ele
// existe, e aí o segmento chega ainda escapado (ex.: "A%2BB", "Mr%20Bet%20(VIP)").
func informantParam(r *http.Request) (string, error) {
	v := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return v, nil
	}
	name, err := url.PathUnescape(v)
	if err != nil {
		return "", errs.Invalid("informante", "invalid path encoding")
	}
	return name, nil
}

// assumptions lê ?inversion= e ?apuestasPorDia=; ausente ou zero usa o default da tela
func assumptions(r *http.Request) (stats.Assumptions, error) {
	a := stats.DefaultAssumptions()
	q := r.URL.Query()

	stake, err := positiveParam(q.Get("inversion"), "inversion")
	if err != nil {
		return a, err
	}
	perDay, err := positiveParam(q.Get("apuestasPorDia"), "apuestasPorDia")
	if err != nil {
		return a, err
	}
	if !stake.IsZero() {
		a.StakePerBet = stake
	}
	if !perDay.IsZero() {
		a.BetsPerDay = perDay
	}
	return a, nil
}

func positiveParam(v, field string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, errs.Invalid(field, "must be a number")
	}
	if d.IsNegative() {
		return decimal.Zero, errs.Invalid(field, "must be >= 0")
	}
	return d, nil
}
