package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClientRoundTrip(t *testing.T) {
	var gotAuth, gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Session{Token: "tok-1", User: User{ID: "u-1"}})
	})
	mux.HandleFunc("/apuestas", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("informante")
		_ = json.NewEncoder(w).Encode(PickList{Picks: []Pick{{ID: "p1", Informante: "Juan Perez"}}, Revision: 3})
	})
	mux.HandleFunc("/apuesta/p1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
	mux.HandleFunc("/estadisticas/analisis/Juan", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(Analysis{Informante: "Juan", RiskLevel: "LOW"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	if _, err := c.Login(ctx, "a@b.co", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	list, err := c.ListPicks(ctx, "Juan Perez")
	if err != nil {
		t.Fatalf("ListPicks: %v", err)
	}
	if gotAuth != "Bearer tok-1" || gotQuery != "Juan Perez" || list.Revision != 3 {
		t.Errorf("auth=%q query=%q list=%+v", gotAuth, gotQuery, list)
	}

	_, err = c.Settle(ctx, "p1", Won)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Settle err = %v, want ErrNotFound", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "not found" {
		t.Errorf("APIError = %+v", apiErr)
	}

	a, err := c.Analysis(ctx, "Juan", decimal.NewFromInt(20), decimal.NewFromInt(2))
	if err != nil || a.RiskLevel != "LOW" {
		t.Fatalf("Analysis = %+v, %v", a, err)
	}
	if gotQuery != "apuestasPorDia=2&inversion=20" {
		t.Errorf("analysis query = %q", gotQuery)
	}
}

func TestLatestRecoversAfterRevisionReset(t *testing.T) {
	l := NewLatest(func(p PickList) int64 { return p.Revision })
	ctx := context.Background()
	fetch := func(rev int64) (PickList, error) {
		return l.Fetch(ctx, func(context.Context) (PickList, error) { return PickList{Revision: rev}, nil })
	}

	if _, err := fetch(9); err != nil {
		t.Fatal(err)
	}
	// contador zerado no Redis: o primeiro valor menor cai, os seguintes passam
	if _, err := fetch(1); !errors.Is(err, ErrSuperseded) {
		t.Errorf("first lower revision err = %v, want ErrSuperseded", err)
	}
	for _, rev := range []int64{1, 2, 3} {
		if v, err := fetch(rev); err != nil || v.Revision != rev {
			t.Errorf("after reset fetch rev %d = %+v, %v", rev, v, err)
		}
	}
}

func TestLatestCancelsInFlight(t *testing.T) {
	l := NewLatest(func(p PickList) int64 { return p.Revision })

	started := make(chan struct{})
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Fetch(context.Background(), func(ctx context.Context) (PickList, error) {
			close(started)
			<-ctx.Done() // só termina quando for cancelado
			return PickList{Revision: 1}, ctx.Err()
		})
		firstErr <- err
	}()
	<-started

	got, err := l.Fetch(context.Background(), func(context.Context) (PickList, error) {
		return PickList{Revision: 2}, nil
	})
	if err != nil || got.Revision != 2 {
		t.Fatalf("second fetch = %+v, %v", got, err)
	}

	select {
	case err := <-firstErr:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("first fetch err = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch was not cancelled")
	}
}

func TestLatestDropsOlderRevision(t *testing.T) {
	l := NewLatest(func(p PickList) int64 { return p.Revision })
	ctx := context.Background()

	if _, err := l.Fetch(ctx, func(context.Context) (PickList, error) { return PickList{Revision: 5}, nil }); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Fetch(ctx, func(context.Context) (PickList, error) { return PickList{Revision: 4}, nil }); !errors.Is(err, ErrSuperseded) {
		t.Errorf("older revision err = %v, want ErrSuperseded", err)
	}
	if v, err := l.Fetch(ctx, func(context.Context) (PickList, error) { return PickList{Revision: 5}, nil }); err != nil || v.Revision != 5 {
		t.Errorf("same revision should be delivered, got %+v %v", v, err)
	}

	// revisão 0 vem quando o servidor não conseguiu ler o contador
	for i := 0; i < 3; i++ {
		if v, err := l.Fetch(ctx, func(context.Context) (PickList, error) { return PickList{Revision: 0, Picks: make([]Pick, i)}, nil }); err != nil || len(v.Picks) != i {
			t.Errorf("unknown revision fetch %d = %+v, %v", i, v, err)
		}
	}

	boom := errors.New("boom")
	if _, err := l.Fetch(ctx, func(context.Context) (PickList, error) { return PickList{}, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
