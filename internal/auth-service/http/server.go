package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/radieske/pick-control/internal/auth-service/dto"
	"github.com/radieske/pick-control/internal/auth-service/repo"
	"github.com/radieske/pick-control/internal/shared/auth"
	"github.com/radieske/pick-control/internal/shared/errs"
	"github.com/radieske/pick-control/internal/shared/metrics"
	"github.com/radieske/pick-control/internal/shared/validation"
)

// Repo define as operações de usuário usadas pelos handlers
type Repo interface {
	Create(ctx context.Context, u repo.User) (repo.User, error)
	ByEmail(ctx context.Context, email string) (repo.User, error)
	TouchLogin(ctx context.Context, id string) (repo.User, error)
}

var validate = validation.New()

// errBadCredentials não diferencia e-mail inexistente de senha errada
var errBadCredentials = fmt.Errorf("invalid email or password: %w", errs.ErrUnauthorized)

// Server expõe /register, /login e /logout
type Server struct {
	log      *zap.Logger
	repo     Repo
	issuer   *auth.Issuer
	verifier *auth.Verifier
	revoked  auth.Revocations
	cost     int
}

func NewServer(log *zap.Logger, r Repo, iss *auth.Issuer, v *auth.Verifier, rev auth.Revocations) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log, repo: r, issuer: iss, verifier: v, revoked: rev, cost: bcrypt.DefaultCost}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Instrument("auth-service", s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.With(auth.Middleware(s.verifier)).Post("/logout", s.logout)
	return r
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Invalid("", "bad json"))
		return
	}
	if err := validation.Translate(validate.Struct(req), nil); err != nil {
		s.writeError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.writeError(w, fmt.Errorf("hash password: %w", err))
		return
	}

	u, err := s.repo.Create(r.Context(), repo.User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "email already registered", Field: "email"})
			return
		}
		s.writeError(w, err)
		return
	}

	s.writeSession(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Invalid("", "bad json"))
		return
	}
	if err := validation.Translate(validate.Struct(req), nil); err != nil {
		s.writeError(w, err)
		return
	}

	u, err := s.repo.ByEmail(r.Context(), req.Email)
	if errors.Is(err, errs.ErrNotFound) {
		metrics.AuthLogins.WithLabelValues("bad_credentials").Inc()
		s.writeError(w, errBadCredentials)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		metrics.AuthLogins.WithLabelValues("bad_credentials").Inc()
		s.writeError(w, errBadCredentials)
		return
	}
	if !u.Active {
		metrics.AuthLogins.WithLabelValues("inactive").Inc()
		s.writeError(w, fmt.Errorf("user inactive: %w", errs.ErrUnauthorized))
		return
	}

	touched, err := s.repo.TouchLogin(r.Context(), u.ID)
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		metrics.AuthLogins.WithLabelValues("inactive").Inc()
		s.writeError(w, err)
		return
	case err != nil:
		s.log.Warn("update last login failed", zap.String("user_id", u.ID), zap.Error(err))
	default:
		u = touched
	}

	metrics.AuthLogins.WithLabelValues("ok").Inc()
	s.writeSession(w, http.StatusOK, u)
}

// logout revoga o jti do token atual até a expiração dele
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	if s.revoked != nil && sess.TokenID != "" {
		if err := s.revoked.Revoke(r.Context(), sess.TokenID, sess.ExpiresAt); err != nil {
			s.writeError(w, errs.Unavailable("revoke token", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func (s *Server) writeSession(w http.ResponseWriter, status int, u repo.User) {
	token, sess, err := s.issuer.Issue(auth.Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, dto.AuthResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User: dto.UserResponse{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	body := dto.ErrorResponse{Error: err.Error(), Field: errs.Field(err)}
	if status >= 500 {
		s.log.Error("auth request failed", zap.Error(err))
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}
