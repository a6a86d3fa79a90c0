package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// APIError é uma resposta não-2xx da API
type APIError struct {
	Status  int
	Message string `json:"error"`
	Field   string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api %d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Is permite errors.Is(err, client.ErrNotFound) e afins
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// Client fala com o api-gateway. Timeouts ficam no http.Client informado.
type Client struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: baseURL, http: hc}
}

// SetToken troca a sessão usada nas chamadas autenticadas
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/register", map[string]string{"name": name, "email": email, "password": password}, &s)
	if err == nil {
		c.SetToken(s.Token)
	}
	return s, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &s)
	if err == nil {
		c.SetToken(s.Token)
	}
	return s, err
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	if err == nil {
		c.SetToken("")
	}
	return err
}

// ListPicks lista os picks; informant vazio traz todos
func (c *Client) ListPicks(ctx context.Context, informant string) (PickList, error) {
	path := "/apuestas"
	if informant != "" {
		path += "?informante=" + url.QueryEscape(informant)
	}
	var out PickList
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) CreatePick(ctx context.Context, p NewPick) (Pick, error) {
	var out struct {
		Pick Pick `json:"pick"`
	}
	err := c.do(ctx, http.MethodPost, "/apuestas", p, &out)
	return out.Pick, err
}

// Settle define o resultado (Won, Lost ou Pending)
func (c *Client) Settle(ctx context.Context, id, outcome string) (Pick, error) {
	var out Pick
	return out, c.do(ctx, http.MethodPut, "/apuesta/"+url.PathEscape(id), map[string]string{"Acierto": outcome}, &out)
}

func (c *Client) Reschedule(ctx context.Context, id string, at time.Time) (Pick, error) {
	var out Pick
	return out, c.do(ctx, http.MethodPut, "/apuesta/"+url.PathEscape(id), map[string]time.Time{"Fecha": at}, &out)
}

func (c *Client) DeletePick(ctx context.Context, id string) (Pick, error) {
	var out struct {
		Pick Pick `json:"pick"`
	}
	err := c.do(ctx, http.MethodDelete, "/apuestas/"+url.PathEscape(id), nil, &out)
	return out.Pick, err
}

func (c *Client) Informant(ctx context.Context, name string) (InformantDetail, error) {
	var out InformantDetail
	return out, c.do(ctx, http.MethodGet, "/informante/"+url.PathEscape(name), nil, &out)
}

func (c *Client) Ranking(ctx context.Context, top int) ([]RankingEntry, error) {
	var out []RankingEntry
	return out, c.do(ctx, http.MethodGet, "/estadisticas/ranking?top="+strconv.Itoa(top), nil, &out)
}

// Analysis projeta o mês do informante com o stake e a frequência dados
func (c *Client) Analysis(ctx context.Context, name string, stakePerBet, betsPerDay decimal.Decimal) (Analysis, error) {
	q := url.Values{}
	q.Set("inversion", stakePerBet.String())
	q.Set("apuestasPorDia", betsPerDay.String())
	var out Analysis
	return out, c.do(ctx, http.MethodGet, "/estadisticas/analisis/"+url.PathEscape(name)+"?"+q.Encode(), nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
