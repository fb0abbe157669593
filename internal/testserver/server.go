// Package testserver is an in-process stand-in for the labor-allocation
// backend. It speaks the real envelope protocol and token flow so the
// client can be exercised end to end without the production service. The
// allocation results it returns are shaped fixtures, not the production
// algorithm.
package testserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ganot/labordesk/internal/api"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const tokenTTL = 24 * time.Hour

type account struct {
	user         api.SecurityUser
	passwordHash []byte
}

// Server holds the stub backend's in-memory state.
type Server struct {
	mu        sync.Mutex
	accounts  map[string]account
	employees []api.Employee
	projects  []api.Project
	logs      []api.AllocationLog
	nextID    int64

	secret       []byte
	loginLimiter *rate.Limiter
	router       chi.Router
	logger       *slog.Logger
}

// New creates a seeded stub backend signing tokens with secret.
func New(secret string, logger *slog.Logger) (*Server, error) {
	s := &Server{
		accounts: make(map[string]account),
		nextID:   1,
		secret:   []byte(secret),
		// Generous for tests, tight enough to exercise the limit.
		loginLimiter: rate.NewLimiter(rate.Every(time.Second/20), 20),
		logger:       logger,
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP surface of the stub backend.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) seed() error {
	seedAccounts := []struct {
		name     string
		password string
		position api.JobPosition
	}{
		{"alice", "secret1", api.PositionHR},
		{"bob", "secret2", api.PositionDeveloper},
	}
	for _, acct := range seedAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}
		s.accounts[acct.name] = account{
			user: api.SecurityUser{
				UID:         s.nextID,
				Username:    acct.name,
				RealName:    acct.name,
				JobPosition: acct.position,
				LaborValue:  100,
				BirthDate:   "1990-01-01",
			},
			passwordHash: hash,
		}
		s.nextID++
	}

	now := time.Now().Format(time.DateTime)
	seedEmployees := []struct {
		name     string
		position api.JobPosition
		labor    int
		injury   api.InjuryStatus
	}{
		{"alice", api.PositionHR, 100, api.InjuryHealthy},
		{"bob", api.PositionDeveloper, 120, api.InjuryHealthy},
		{"carol", api.PositionProduct, 90, api.InjuryMinor},
		{"dave", api.PositionFinance, 60, api.InjuryHealthy},
	}
	for _, e := range seedEmployees {
		s.employees = append(s.employees, api.Employee{
			ID:           s.nextID,
			RealName:     e.name,
			BirthDate:    "1990-01-01",
			JobPosition:  e.position,
			LaborValue:   e.labor,
			InjuryStatus: e.injury,
			CreateTime:   now,
		})
		s.nextID++
	}

	s.projects = append(s.projects, api.Project{
		ID:                 s.nextID,
		ProjectName:        "Warehouse move",
		WorkDescription:    "Relocate stock to the new warehouse",
		RequiredLaborValue: 150,
		Status:             api.ProjectPending,
		CreateTime:         now,
	})
	s.nextID++
	return nil
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/test/current-user", s.handleCurrentUser)
		r.Post("/users/query", s.handleEmployeeQuery)
		r.Post("/users/create", s.handleEmployeeCreate)
		r.Put("/users/update", s.handleEmployeeUpdate)
		r.Post("/users/{id}", s.handleEmployeeDelete)
		r.Post("/labor-projects/query", s.handleProjectQuery)
		r.Post("/labor-projects/create", s.handleProjectCreate)
		r.Put("/labor-projects/update", s.handleProjectUpdate)
		r.Delete("/labor-projects/{id}", s.handleProjectDelete)
		r.Post("/labor-allocations/allocate", s.handleAllocate)
		r.Post("/labor-allocations/logs", s.handleLogQuery)
	})

	s.router = r
}

func writeOK(w http.ResponseWriter, result any) {
	writeEnvelope(w, 0, "", result)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeEnvelope(w, status, msg, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, msg string, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"msg":    msg,
		"result": result,
	})
}

// requireToken verifies the raw Authorization header and resolves the
// account it was issued to.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.Header.Get("Authorization")
		if tokenStr == "" {
			writeErr(w, 401, "missing token")
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			writeErr(w, 401, "invalid token")
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			writeErr(w, 401, "invalid token")
			return
		}

		s.mu.Lock()
		_, ok := s.accounts[subject]
		s.mu.Unlock()
		if !ok {
			writeErr(w, 401, "unknown account")
			return
		}

		r.Header.Set("X-Account", subject)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) currentAccount(r *http.Request) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[r.Header.Get("X-Account")]
	return acct, ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow() {
		writeErr(w, 429, "too many login attempts")
		return
	}

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.RealName]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeErr(w, 401, "invalid credentials")
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   req.RealName,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		writeErr(w, 500, "signing token")
		return
	}

	s.logger.Info("login", "user", req.RealName)
	writeOK(w, api.LoginResponse{Token: token, User: acct.user})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.currentAccount(r)
	if !ok {
		writeErr(w, 401, "unknown account")
		return
	}
	writeOK(w, acct.user)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
