package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/warebase/server/internal/api/problem"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/users"
)

// AuthHandler serves login, logout, and the current-principal endpoint.
// Login establishes a server-side session (cookie) and also returns a bearer
// token for non-browser clients.
type AuthHandler struct {
	Users      *users.Service
	Sessions   *auth.SessionManager
	Tokens     *auth.JWTManager
	CookieName string
	Secure     bool
	Env        string
}

func NewAuthHandler(users *users.Service, sessions *auth.SessionManager, tokens *auth.JWTManager, cookieName string, secure bool, env string) *AuthHandler {
	return &AuthHandler{
		Users:      users,
		Sessions:   sessions,
		Tokens:     tokens,
		CookieName: cookieName,
		Secure:     secure,
		Env:        env,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// Unknown username, wrong password, and disabled account all get
		// the same response so the endpoint cannot be used to enumerate
		// accounts.
		if errors.Is(err, users.ErrInvalidCredentials) || errors.Is(err, users.ErrUserInactive) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", err, h.Env)
			return
		}
		mapError(w, r, err, h.Env)
		return
	}

	sessionToken, session, err := h.Sessions.Issue(r.Context(), user.ID)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	bearer, err := h.Tokens.Generate(user.ID, user.Username)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    sessionToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     bearer,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(*user),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		// Best effort: an already-expired session still logs out cleanly.
		_ = h.Sessions.Revoke(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type meResponse struct {
	UserID         int64    `json:"user_id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	FullName       string   `json:"full_name"`
	OrganizationID *int64   `json:"organization_id"`
	RoleID         *int64   `json:"role_id"`
	RoleName       string   `json:"role_name,omitempty"`
	Permissions    []string `json:"permissions"`
	Method         string   `json:"method"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	permissions := principal.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	writeJSON(w, http.StatusOK, meResponse{
		UserID:         principal.UserID,
		Username:       principal.Username,
		Email:          principal.Email,
		FullName:       principal.FullName,
		OrganizationID: principal.OrganizationID,
		RoleID:         principal.RoleID,
		RoleName:       principal.RoleName,
		Permissions:    permissions,
		Method:         principal.Method,
	})
}
