// Package stubserver is a self-contained CarePoint backend implementing the
// same HTTP contract as the production service, for local development and
// integration tests. Conversations live in sqlite; AI replies are canned.
package stubserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Server serves the stub backend.
type Server struct {
	store     *Store
	responder *Responder
}

// NewServer creates a stub server over the given store.
func NewServer(store *Store) *Server {
	return &Server{store: store, responder: NewResponder()}
}

// Router builds the HTTP routing surface, mirroring the production
// endpoints exactly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/loginUser", s.handleLogin)
	r.Post("/signupUser", s.handleSignup)
	r.Post("/createConversation", s.handleCreateConversation)
	r.Post("/addMessage", s.handleAddMessage)
	r.Get("/getConversation/{hash}", s.handleGetConversation)
	r.Get("/getUserConversations/{userID:[0-9]+}", s.handleGetUserConversations)
	r.Put("/endConversation", s.handleEndConversation)
	r.Post("/getAIResponse", s.handleGetAIResponse)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Error().Err(err).Msg("login lookup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"name": user.Name, "user_id": user.ID})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	userID, err := s.store.CreateUser(r.Context(), req.Name, req.Email, string(hash))
	if errors.Is(err, ErrEmailTaken) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("signup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"name": req.Name, "user_id": userID})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationHash string `json:"conversation_hash"`
		UserID           int    `json:"user_id"`
		Title            string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.ConversationHash == "" || req.UserID == 0 || req.Title == "" {
		writeError(w, http.StatusBadRequest, "conversation_hash, user_id, and title are required")
		return
	}

	err := s.store.CreateConversation(r.Context(), req.ConversationHash, req.UserID, req.Title)
	if errors.Is(err, ErrConversationExists) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create conversation failed")
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"conversation_id": req.ConversationHash,
		"message":         "Conversation created successfully",
	})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationHash string `json:"conversation_hash"`
		Sender           string `json:"sender"`
		Message          string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.ConversationHash == "" || req.Sender == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "conversation_hash, sender, and message are required")
		return
	}
	if req.Sender != "user" && req.Sender != "bot" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid sender. Must be 'user' or 'bot'"})
		return
	}

	if _, err := s.store.AddMessage(r.Context(), req.ConversationHash, req.Sender, req.Message); err != nil {
		status := http.StatusBadRequest
		writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Message added successfully"})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	messages, err := s.store.GetMessages(r.Context(), hash)
	if errors.Is(err, ErrConversationNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get conversation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": messages})
}

func (s *Server) handleGetUserConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	conversations, err := s.store.GetUserConversations(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("list conversations failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"conversations": conversations,
		"count":         len(conversations),
	})
}

func (s *Server) handleEndConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationHash string `json:"conversation_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConversationHash == "" {
		writeError(w, http.StatusBadRequest, "conversation_hash is required")
		return
	}

	err := s.store.EndConversation(r.Context(), req.ConversationHash)
	if errors.Is(err, ErrConversationNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetAIResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationHash string `json:"conversation_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConversationHash == "" {
		writeError(w, http.StatusBadRequest, "conversation_hash is required")
		return
	}

	messages, err := s.store.GetMessages(r.Context(), req.ConversationHash)
	if err != nil {
		writeError(w, http.StatusNotFound, "Failed to get conversation history")
		return
	}

	latest := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == "user" {
			latest = messages[i].Message
			break
		}
	}

	response, medicines := s.responder.Respond(latest)

	// The production service also persists the bot's messages before
	// answering; mirror that so reloaded conversations include them.
	if _, err := s.store.AddMessage(r.Context(), req.ConversationHash, "bot", response); err != nil {
		log.Warn().Err(err).Msg("failed to save bot message")
	}
	for _, medicine := range medicines {
		if _, err := s.store.AddMessage(r.Context(), req.ConversationHash, "bot", medicine); err != nil {
			log.Warn().Err(err).Msg("failed to save medicine recommendation")
		}
	}

	payload := map[string]any{"success": true, "response": response, "medicines": medicines}
	if medicines == nil {
		payload["medicines"] = []string{}
	}
	writeJSON(w, http.StatusOK, payload)
}
