package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/session"
)

type contextKey string

const userIDKey contextKey = "userID"

// requireSession authenticates the bearer token and stashes the user id in
// the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := s.sessions.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

type authResponse struct {
	User  *data.User `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Email == "" {
		respondError(w, http.StatusBadRequest, "username and email are required")
		return
	}
	if len(body.Password) < 6 {
		respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := session.HashPassword(body.Password)
	if err != nil {
		respondFailure(w, err)
		return
	}

	user := data.User{
		Name:     body.Name,
		Username: body.Username,
		Email:    body.Email,
		Password: hash,
	}
	if err := s.db.CreateUser(&user); err != nil {
		respondFailure(w, err)
		return
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{User: &user, Token: token})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.db.GetUserByEmail(body.Email)
	if err != nil || !session.CheckPassword(user.Password, body.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}
