package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"storytime/internal/app"
	"storytime/internal/util"
	"storytime/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App        *app.App
	CORSOrigin string
	// UploadsDir enables static serving of stored images when local file
	// storage is in use. Empty disables the route.
	UploadsDir string
}

// Server exposes the HTTP endpoints for the backend.
type Server struct {
	app        *app.App
	mux        *http.ServeMux
	corsOrigin string
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:        cfg.App,
		mux:        http.NewServeMux(),
		corsOrigin: cfg.CORSOrigin,
	}
	s.routes(cfg.UploadsDir)
	return s
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	handler := util.WithRequestLog(s.mux)
	handler = util.WithRequestID(handler)
	handler = util.WithCORS(s.corsOrigin, handler)
	return util.WithSecurityHeaders(handler)
}

func (s *Server) routes(uploadsDir string) {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/register", s.handleRegister)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/logout", s.handleLogout)
	s.mux.Handle("/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/subscription", s.authenticated(s.handleSubscription))

	// stories: GET is public, POST requires a session
	s.mux.HandleFunc("/post", s.handleStories)

	if uploadsDir != "" {
		s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authHandler receives the identity resolved by the session middleware.
type authHandler func(http.ResponseWriter, *http.Request, domain.Identity)

// authenticated is the single authorization gate: it reads the token
// cookie, verifies it, and attaches the identity to the request context.
// Handlers behind it never see an unauthenticated request.
func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		r = r.WithContext(ContextWithIdentity(r.Context(), identity))
		next(w, r, identity)
	})
}

func (s *Server) authorize(r *http.Request) (domain.Identity, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		slog.Warn("missing session cookie", "path", r.URL.Path)
		return domain.Identity{}, false
	}
	identity, err := s.app.IdentityFromToken(cookie.Value)
	if err != nil {
		// The client gets a uniform 401; the cause stays in the logs.
		slog.Warn("session token rejected", "path", r.URL.Path, "err", err)
		return domain.Identity{}, false
	}
	return identity, true
}

// auth handlers
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, userSummary{ID: user.ID, Username: user.Username, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) || errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, profileResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{ID: identity.UserID, Email: identity.Email})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req subscriptionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.UpdateSubscription(identity, req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":           user.ID,
		"subscription": string(user.Subscription),
	})
}

// story handlers
func (s *Server) handleStories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListStories(w, r)
	case http.MethodPost:
		s.authenticated(s.handleCreateStory).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.app.RecentStories(r.Context())
	if err != nil {
		slog.Error("list stories failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var req createStoryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	story, err := s.app.CreateStory(r.Context(), identity, domain.StoryDraft{
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Ending:      req.Ending,
		ImageURL:    req.Image,
	})
	if err != nil {
		if errors.Is(err, app.ErrTitleRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("create story failed", "author", identity.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type subscriptionRequest struct {
	Tier string `json:"tier"`
}

type createStoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Body        string `json:"storyBody"`
	Ending      string `json:"storyEnd"`
	Image       string `json:"image"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
