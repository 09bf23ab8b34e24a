package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/openlearn/auth-service/internal/config"
	"github.com/openlearn/auth-service/internal/model"
	"github.com/openlearn/auth-service/internal/service"
	"github.com/openlearn/auth-service/internal/store"
	"github.com/openlearn/auth-service/internal/token"
)

type Server struct {
	cfg     config.Config
	auth    *service.AuthService
	store   *store.Store
	limiter *loginLimiter
}

func NewServer(cfg config.Config, st *store.Store, auth *service.AuthService, redisClient *redis.Client) *Server {
	return &Server{
		cfg:     cfg,
		auth:    auth,
		store:   st,
		limiter: newLoginLimiter(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(securityHeaders)

	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/admin/login", s.handleLogin(model.KindAdmin))
		r.Post("/user/login", s.handleLogin(model.KindUser))

		r.With(s.authMiddleware, s.requirePrincipal(model.KindAdmin)).Get("/admin/me", s.handleMe(model.KindAdmin))
		r.With(s.authMiddleware, s.requirePrincipal(model.KindUser)).Get("/user/me", s.handleMe(model.KindUser))
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.allow(r.Context(), ip) {
			writeError(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
			return
		}

		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		switch kind {
		case model.KindAdmin:
			tok, admin, err := s.auth.LoginAdmin(r.Context(), req.Email, req.Password)
			if err != nil {
				s.writeLoginError(w, kind, err)
				return
			}
			s.limiter.reset(r.Context(), ip)
			writeJSON(w, http.StatusOK, map[string]interface{}{"token": tok, "admin": admin})
		case model.KindUser:
			tok, user, err := s.auth.LoginUser(r.Context(), req.Email, req.Password)
			if err != nil {
				s.writeLoginError(w, kind, err)
				return
			}
			s.limiter.reset(r.Context(), ip)
			writeJSON(w, http.StatusOK, map[string]interface{}{"token": tok, "user": user})
		}
	}
}

func (s *Server) handleMe(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		if principal == nil {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{string(kind): principal})
	}
}

func (s *Server) writeLoginError(w http.ResponseWriter, kind model.Kind, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, kind.Label()+" not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrAccountInactive):
		writeError(w, http.StatusForbidden, kind.Label()+" account is inactive")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		s.writeInternal(w, err)
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r.Header.Get("Authorization"))
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := token.Parse(s.cfg.JWTSecret, s.cfg.JWTIssuer, tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Tokens are stateless, so privileged routes re-resolve the principal and
// reject accounts that no longer exist or were deactivated.
func (s *Server) requirePrincipal(kind model.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), s.cfg.StoreTimeout)
			defer cancel()

			principal, err := s.store.GetPrincipal(ctx, kind, claims.PrincipalID)
			if err != nil {
				switch {
				case errors.Is(err, store.ErrNotFound):
					writeError(w, http.StatusNotFound, kind.Label()+" not found")
				case errors.Is(err, context.DeadlineExceeded):
					writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
				default:
					s.writeInternal(w, err)
				}
				return
			}
			if !principal.Active() {
				writeError(w, http.StatusForbidden, kind.Label()+" account is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, principal)))
		})
	}
}

type claimsKey struct{}

type principalKey struct{}

func claimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*token.Claims)
	return claims
}

func principalFromContext(ctx context.Context) model.Principal {
	principal, _ := ctx.Value(principalKey{}).(model.Principal)
	return principal
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func decodeJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (s *Server) writeInternal(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	body := map[string]string{"message": "Something went wrong"}
	if s.cfg.Development() {
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
