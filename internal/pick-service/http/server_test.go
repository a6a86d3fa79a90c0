package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/pick-service/dto"
	"github.com/radieske/pick-control/internal/pick-service/repo"
	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/cache"
	"github.com/radieske/pick-control/internal/shared/errs"
	"github.com/radieske/pick-control/pkg/contracts/events"
)

const secret = "test-secret"

// memStore é um Store em memória que respeita o Scope
type memStore struct {
	mu        sync.Mutex
	seq       int
	picks     map[string]pick.Pick
	lists     int
	fail      error
	updateErr error
}

func newMemStore() *memStore { return &memStore{picks: map[string]pick.Pick{}} }

func (m *memStore) visible(s repo.Scope, p pick.Pick) bool { return s.All || p.OwnerID == s.OwnerID }

func (m *memStore) sorted(keep func(pick.Pick) bool) []pick.Pick {
	out := make([]pick.Pick, 0)
	for _, p := range m.picks {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) List(_ context.Context, s repo.Scope) ([]pick.Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.fail != nil {
		return nil, m.fail
	}
	return m.sorted(func(p pick.Pick) bool { return m.visible(s, p) }), nil
}

func (m *memStore) ListByInformant(_ context.Context, s repo.Scope, name string) ([]pick.Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.fail != nil {
		return nil, m.fail
	}
	return m.sorted(func(p pick.Pick) bool { return m.visible(s, p) && p.Informant == name }), nil
}

func (m *memStore) Insert(_ context.Context, p pick.Pick) (pick.Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := p.Validate(); err != nil {
		return pick.Pick{}, err
	}
	m.seq++
	p.ID = fmt.Sprintf("p%03d", m.seq)
	p.CreatedAt = p.PlacedAt
	p.UpdatedAt = p.PlacedAt
	m.picks[p.ID] = p
	return p, nil
}

func (m *memStore) mutate(s repo.Scope, id string, f func(*pick.Pick)) (pick.Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.picks[id]
	if !ok || !m.visible(s, p) {
		return pick.Pick{}, fmt.Errorf("pick %s: %w", id, errs.ErrNotFound)
	}
	f(&p)
	m.picks[id] = p
	return p, nil
}

func (m *memStore) Get(_ context.Context, s repo.Scope, id string) (pick.Pick, error) {
	return m.mutate(s, id, func(*pick.Pick) {})
}

// Update é atômico como o UPDATE do Postgres: ou grava tudo ou nada
func (m *memStore) Update(_ context.Context, s repo.Scope, id string, c repo.Changes) (pick.Pick, error) {
	if m.updateErr != nil {
		return pick.Pick{}, m.updateErr
	}
	return m.mutate(s, id, func(p *pick.Pick) {
		if c.Outcome != nil {
			p.Outcome = *c.Outcome
		}
		if c.PlacedAt != nil {
			p.PlacedAt = *c.PlacedAt
		}
	})
}

func (m *memStore) Delete(_ context.Context, s repo.Scope, id string) (pick.Pick, error) {
	p, err := m.mutate(s, id, func(*pick.Pick) {})
	if err != nil {
		return p, err
	}
	m.mu.Lock()
	delete(m.picks, id)
	m.mu.Unlock()
	return p, nil
}

func (m *memStore) Informants(_ context.Context, s repo.Scope) ([]repo.InformantCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, p := range m.picks {
		if m.visible(s, p) {
			counts[p.Informant]++
		}
	}
	out := make([]repo.InformantCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, repo.InformantCount{Informant: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Informant < out[j].Informant })
	return out, nil
}

type memCache struct {
	mu      sync.Mutex
	revs    map[string]int64
	entries map[string]cache.Entry
}

func newMemCache() *memCache {
	return &memCache{revs: map[string]int64{}, entries: map[string]cache.Entry{}}
}

func (c *memCache) Revision(_ context.Context, owner string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revs[owner], nil
}

func (c *memCache) Bump(_ context.Context, owner string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revs[owner]++
	return c.revs[owner], nil
}

func (c *memCache) GetInformant(_ context.Context, owner, informant string) (cache.Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[owner+"|"+informant]
	return e, ok, nil
}

func (c *memCache) SetInformant(_ context.Context, owner, informant string, e cache.Entry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[owner+"|"+informant] = e
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.PickEvent
	notes  []events.Broadcast
	pubErr error
}

func (r *recorder) PublishPickEvent(_ context.Context, e events.PickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.pubErr
}

func (r *recorder) Publish(_ context.Context, b events.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, b)
	return nil
}

type fixture struct {
	store *memStore
	cache *memCache
	rec   *recorder
	h     http.Handler
	iss   *auth.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), cache: newMemCache(), rec: &recorder{}, iss: auth.NewIssuer(secret, time.Hour)}
	srv := NewServer(Deps{
		Store:     f.store,
		Cache:     f.cache,
		Publisher: f.rec,
		Notifier:  f.rec,
		Verifier:  auth.NewVerifier(secret, nil),
		CacheTTL:  time.Minute,
		Service:   "pick-service-test",
	})
	f.h = srv.Router()
	return f
}

func (f *fixture) token(t *testing.T, user, role string) string {
	t.Helper()
	tok, _, err := f.iss.Issue(auth.Identity{UserID: user, Name: user, Role: role})
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (f *fixture) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// seed cria um pick via API e devolve o id
func (f *fixture) seed(t *testing.T, token, informant, acierto, stake, odds string, day int) string {
	t.Helper()
	rec := f.do(t, token, http.MethodPost, "/apuestas", fmt.Sprintf(
		`{"Apuesta":"Real Madrid gana","Informante":%q,"TipoDeApuesta":"1X2","Casa":"Bet365","Acierto":%q,"CantidadApostada":%s,"Cuota":%s,"Fecha":"2024-03-%02dT12:00:00Z"}`,
		informant, acierto, stake, odds, day))
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d body = %s", rec.Code, rec.Body.String())
	}
	return decodeBody[dto.PickMessageResponse](t, rec).Pick.ID
}

func TestRequiresToken(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/apuestas", "/informantes", "/estadisticas/resumen"} {
		if rec := f.do(t, "", http.MethodGet, path, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, rec.Code)
		}
	}
}

func TestCreatePick(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)

	rec := f.do(t, tok, http.MethodPost, "/apuestas", `{"Apuesta":"Over 2.5 + Ambos marcam","Informante":" Juan ","TipoDeApuesta":"Over 2.5 + BTTS","Casa":"Bet365","CantidadApostada":10,"Cuota":2.5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[dto.PickMessageResponse](t, rec).Pick
	if got.Informante != "Juan" || got.Owner != "alice" || got.Acierto != pick.WirePending {
		t.Errorf("pick = %+v", got)
	}
	if len(got.Mercados) != 2 {
		t.Errorf("Mercados = %v, want 2 legs", got.Mercados)
	}
	if len(f.rec.events) != 1 || f.rec.events[0].Type != events.PickCreated || f.rec.events[0].Revision != 1 {
		t.Errorf("events = %+v", f.rec.events)
	}
	if len(f.rec.notes) != 1 || f.rec.notes[0].OwnerID != "alice" || f.rec.notes[0].Update.Type != events.TypePicksChanged {
		t.Errorf("notifications = %+v", f.rec.notes)
	}
}

func TestCreatePickValidation(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing informant", `{"Apuesta":"x","Casa":"Bet365","Cuota":2}`, "Informante"},
		{"blank description", `{"Apuesta":"  ","Informante":"Juan","Casa":"Bet365"}`, "Apuesta"},
		{"odds below one", `{"Apuesta":"x","Informante":"Juan","Casa":"Bet365","Cuota":0.5}`, "Cuota"},
		{"negative stake", `{"Apuesta":"x","Informante":"Juan","Casa":"Bet365","CantidadApostada":-1}`, "CantidadApostada"},
		{"unknown outcome", `{"Apuesta":"x","Informante":"Juan","Casa":"Bet365","Acierto":"maybe"}`, "Acierto"},
		{"bad json", `{"Apuesta":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tok, http.MethodPost, "/apuestas", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			if got := decodeBody[dto.ErrorResponse](t, rec); got.Field != tt.field {
				t.Errorf("field = %q, want %q", got.Field, tt.field)
			}
		})
	}
	if len(f.store.picks) != 0 {
		t.Errorf("store has %d picks after rejected requests", len(f.store.picks))
	}
}

func TestListIsScopedByOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.token(t, "alice", auth.RoleUser)
	bob := f.token(t, "bob", auth.RoleUser)
	admin := f.token(t, "root", auth.RoleAdmin)

	f.seed(t, alice, "Juan", "True", "10", "2", 1)
	f.seed(t, alice, "Pedro", "Pending", "10", "2", 2)
	f.seed(t, bob, "Juan", "False", "5", "3", 3)

	tests := []struct {
		token string
		path  string
		want  int
		rev   int64
	}{
		{alice, "/apuestas", 2, 2},
		{bob, "/apuestas", 1, 1},
		{alice, "/apuestas?informante=Juan", 1, 2},
		{admin, "/apuestas", 3, 0},
	}
	for _, tt := range tests {
		rec := f.do(t, tt.token, http.MethodGet, tt.path, nil)
		got := decodeBody[dto.ListPicksResponse](t, rec)
		if len(got.Picks) != tt.want || got.Revision != tt.rev {
			t.Errorf("GET %s = %d picks rev %d, want %d rev %d", tt.path, len(got.Picks), got.Revision, tt.want, tt.rev)
		}
	}
}

func TestUpdatePick(t *testing.T) {
	f := newFixture(t)
	alice := f.token(t, "alice", auth.RoleUser)
	bob := f.token(t, "bob", auth.RoleUser)
	id := f.seed(t, alice, "Juan", "Pending", "10", "2.5", 1)

	rec := f.do(t, alice, http.MethodPut, "/apuesta/"+id, `{"Acierto":"True","Fecha":"2024-04-01T10:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[dto.PickResponse](t, rec)
	if got.Acierto != pick.WireWon || got.Fecha.Month() != time.April {
		t.Errorf("pick = %+v", got)
	}
	if !got.Ganancia.Equal(decimal.RequireFromString("15")) {
		t.Errorf("Ganancia = %s, want 15", got.Ganancia)
	}

	types := []string{}
	for _, e := range f.rec.events {
		types = append(types, e.Type)
	}
	want := []string{events.PickCreated, events.PickSettled, events.PickRescheduled}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("event types = %v, want %v", types, want)
	}

	if rec := f.do(t, alice, http.MethodPut, "/apuesta/"+id, `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty update = %d, want 400", rec.Code)
	}
	if rec := f.do(t, alice, http.MethodPut, "/apuesta/nope", `{"Acierto":"False"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d, want 404", rec.Code)
	}
	if rec := f.do(t, bob, http.MethodPut, "/apuesta/"+id, `{"Acierto":"False"}`); rec.Code != http.StatusNotFound {
		t.Errorf("other owner's pick = %d, want 404", rec.Code)
	}
}

func TestUpdatePickFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	alice := f.token(t, "alice", auth.RoleUser)
	id := f.seed(t, alice, "Juan", "Pending", "10", "2", 1)
	revBefore := f.cache.revs["alice"]

	f.store.updateErr = errs.Unavailable("update pick", errors.New("connection reset"))
	rec := f.do(t, alice, http.MethodPut, "/apuesta/"+id, `{"Acierto":"True","Fecha":"2024-04-01T10:00:00Z"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if len(f.rec.events) != 1 || f.rec.events[0].Type != events.PickCreated {
		t.Errorf("failed update must not publish, events = %+v", f.rec.events)
	}
	if f.cache.revs["alice"] != revBefore {
		t.Errorf("revision bumped on failed update: %d -> %d", revBefore, f.cache.revs["alice"])
	}

	f.store.updateErr = nil
	got := decodeBody[dto.PickResponse](t, f.do(t, alice, http.MethodGet, "/apuesta/"+id, nil))
	if got.Acierto != pick.WirePending || got.Fecha.Day() != 1 || got.Fecha.Month() != time.March {
		t.Errorf("pick changed after failed update: %+v", got)
	}
}

func TestGetPick(t *testing.T) {
	f := newFixture(t)
	alice := f.token(t, "alice", auth.RoleUser)
	bob := f.token(t, "bob", auth.RoleUser)
	id := f.seed(t, alice, "Juan", "True", "10", "2", 1)

	rec := f.do(t, alice, http.MethodGet, "/apuesta/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[dto.PickResponse](t, rec); got.ID != id || got.Informante != "Juan" {
		t.Errorf("pick = %+v", got)
	}
	if rec := f.do(t, bob, http.MethodGet, "/apuesta/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("other owner's pick = %d, want 404", rec.Code)
	}
}

func TestDeletePick(t *testing.T) {
	f := newFixture(t)
	alice := f.token(t, "alice", auth.RoleUser)
	id := f.seed(t, alice, "Juan", "Pending", "10", "2", 1)

	rec := f.do(t, alice, http.MethodDelete, "/apuestas/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[dto.PickMessageResponse](t, rec); got.Pick.ID != id {
		t.Errorf("deleted = %+v", got.Pick)
	}
	if rec := f.do(t, alice, http.MethodDelete, "/apuestas/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.rec.pubErr = errors.New("kafka down")
	tok := f.token(t, "alice", auth.RoleUser)
	f.seed(t, tok, "Juan", "Pending", "10", "2", 1)
}

func TestStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.fail = errs.Unavailable("list picks", errors.New("connection refused"))
	rec := f.do(t, f.token(t, "alice", auth.RoleUser), http.MethodGet, "/apuestas", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if got := decodeBody[dto.ErrorResponse](t, rec); got.Error != "Service Unavailable" {
		t.Errorf("error body leaks internals: %q", got.Error)
	}
}

func TestInformantDetail(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)
	f.seed(t, tok, "Juan", "True", "10", "2.5", 1)  // +15
	f.seed(t, tok, "Juan", "False", "20", "1.8", 2) // -20
	f.seed(t, tok, "Juan", "Pending", "5", "3", 3)

	rec := f.do(t, tok, http.MethodGet, "/informante/Juan", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[dto.InformantResponse](t, rec)
	if got.TotalApuestas != 3 || got.TotalAciertos != 1 || got.Perdidas != 1 || got.Pendientes != 1 {
		t.Errorf("counts = %+v", got)
	}
	if !got.Ganancias.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("ganancias = %s, want -5 (net formula)", got.Ganancias)
	}
	if !got.PorcentajeAciertos.Equal(decimal.NewFromInt(50)) {
		t.Errorf("porcentajeAciertos = %s, want 50", got.PorcentajeAciertos)
	}
	if len(got.Evolucion) != 2 || !got.Evolucion[0].Equal(decimal.NewFromInt(15)) || !got.Evolucion[1].Equal(decimal.NewFromInt(-5)) {
		t.Errorf("evolucion = %v", got.Evolucion)
	}

	// segunda leitura na mesma revisão sai do cache
	before := f.store.lists
	if rec := f.do(t, tok, http.MethodGet, "/informante/Juan", nil); rec.Code != http.StatusOK {
		t.Fatalf("cached status = %d", rec.Code)
	}
	if f.store.lists != before {
		t.Error("expected cache hit without touching the store")
	}

	// uma mutação invalida o cache via revisão
	f.seed(t, tok, "Juan", "True", "10", "2", 4)
	got = decodeBody[dto.InformantResponse](t, f.do(t, tok, http.MethodGet, "/informante/Juan", nil))
	if got.TotalApuestas != 4 {
		t.Errorf("after mutation total = %d, want 4", got.TotalApuestas)
	}

	if rec := f.do(t, tok, http.MethodGet, "/informante/Nadie", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown informant = %d, want 404", rec.Code)
	}
}

// nomes com espaço, parênteses e "+" chegam escapados de formas diferentes
func TestInformantNameInPathIsDecoded(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)
	f.seed(t, tok, "Mr Bet (VIP)", "True", "10", "2", 1)
	f.seed(t, tok, "A+B", "False", "10", "2", 2)

	tests := []struct {
		path, want string
	}{
		{"/informante/Mr%20Bet%20(VIP)", "Mr Bet (VIP)"},
		{"/informante/Mr%20Bet%20%28VIP%29", "Mr Bet (VIP)"},
		{"/informante/A%2BB", "A+B"},
		{"/informante/A+B", "A+B"},
	}
	for _, tt := range tests {
		rec := f.do(t, tok, http.MethodGet, tt.path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", tt.path, rec.Code)
			continue
		}
		if got := decodeBody[dto.InformantResponse](t, rec); got.Informante != tt.want {
			t.Errorf("GET %s informante = %q, want %q", tt.path, got.Informante, tt.want)
		}
	}

	for _, path := range []string{"/estadisticas/analisis/A%2BB", "/estadisticas/analisis/Mr%20Bet%20(VIP)"} {
		if rec := f.do(t, tok, http.MethodGet, path, nil); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestInformantsAndSummary(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)
	f.seed(t, tok, "Juan", "True", "10", "2.5", 1)
	f.seed(t, tok, "Juan", "False", "10", "2", 2)
	f.seed(t, tok, "Pedro", "Pending", "10", "2", 3)

	list := decodeBody[[]dto.InformantCount](t, f.do(t, tok, http.MethodGet, "/informantes", nil))
	if len(list) != 2 || list[0].Informante != "Juan" || list[0].Total != 2 {
		t.Errorf("informantes = %+v", list)
	}

	sum := decodeBody[dto.SummaryResponse](t, f.do(t, tok, http.MethodGet, "/estadisticas/resumen", nil))
	if sum.TotalApuestas != 3 || sum.Resueltas != 2 || sum.Aciertos != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.GananciaTotal.Equal(decimal.NewFromInt(5)) || !sum.PorcentajeAciertos.Equal(decimal.NewFromInt(50)) {
		t.Errorf("profit = %s winPct = %s", sum.GananciaTotal, sum.PorcentajeAciertos)
	}
	if len(sum.PorInformante) != 2 || sum.PorInformante[1].Nombre != "Pedro" || !sum.PorInformante[1].Ganancia.IsZero() {
		t.Errorf("porInformante = %+v", sum.PorInformante)
	}
}

func TestRanking(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)
	f.seed(t, tok, "Ana", "True", "10", "2", 1)
	f.seed(t, tok, "Ana", "False", "10", "2", 2)
	f.seed(t, tok, "Beto", "True", "10", "2", 3)
	f.seed(t, tok, "Caio", "Pending", "10", "2", 4)

	got := decodeBody[[]dto.RankingEntry](t, f.do(t, tok, http.MethodGet, "/estadisticas/ranking", nil))
	if len(got) != 2 || got[0].Informante != "Beto" || got[1].Informante != "Ana" {
		t.Errorf("ranking = %+v", got)
	}

	got = decodeBody[[]dto.RankingEntry](t, f.do(t, tok, http.MethodGet, "/estadisticas/ranking?top=1", nil))
	if len(got) != 1 {
		t.Errorf("top=1 returned %d", len(got))
	}
	if rec := f.do(t, tok, http.MethodGet, "/estadisticas/ranking?top=x", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("top=x = %d, want 400", rec.Code)
	}
}

func TestAnalysis(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "alice", auth.RoleUser)
	// 3 de 4 acertos a 2.0: hitRate 0.75, ROI 50%
	for i, a := range []string{"True", "True", "False", "True"} {
		f.seed(t, tok, "Juan", a, "10", "2", i+1)
	}
	f.seed(t, tok, "Pedro", "Pending", "10", "2", 9)

	list := decodeBody[[]dto.AnalysisResponse](t, f.do(t, tok, http.MethodGet, "/estadisticas/analisis", nil))
	if len(list) != 1 || list[0].Informante != "Juan" {
		t.Fatalf("analysis list = %+v", list)
	}

	rec := f.do(t, tok, http.MethodGet, "/estadisticas/analisis/Juan?inversion=20&apuestasPorDia=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[dto.AnalysisResponse](t, rec)
	if !got.HitRate.Equal(decimal.RequireFromString("0.75")) || !got.ROI.Equal(decimal.NewFromInt(50)) {
		t.Errorf("hitRate = %s roi = %s", got.HitRate, got.ROI)
	}
	// 60 apostas/mês a 20: 1200 apostados; 45 acertos * 20 * 1 - 15 * 20 = 600
	if !got.ProjectedMonthlyStake.Equal(decimal.NewFromInt(1200)) || !got.ProjectedMonthlyProfit.Equal(decimal.NewFromInt(600)) {
		t.Errorf("stake = %s profit = %s", got.ProjectedMonthlyStake, got.ProjectedMonthlyProfit)
	}

	pedro := decodeBody[dto.AnalysisResponse](t, f.do(t, tok, http.MethodGet, "/estadisticas/analisis/Pedro", nil))
	if pedro.RiskLevel != "HIGH" || pedro.Muestra != 0 || !pedro.ProjectedMonthlyStake.Equal(decimal.NewFromInt(300)) {
		t.Errorf("pending-only analysis = %+v", pedro)
	}

	for _, q := range []string{"inversion=-5", "apuestasPorDia=abc"} {
		if rec := f.do(t, tok, http.MethodGet, "/estadisticas/analisis?"+q, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", q, rec.Code)
		}
	}
	if rec := f.do(t, tok, http.MethodGet, "/estadisticas/analisis/Nadie", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown informant = %d, want 404", rec.Code)
	}
}
