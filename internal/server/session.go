package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"complaint-desk/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookie = "complaint_desk_session"

type sessionClaims struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type userKey struct{}

func withUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func userFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey{}).(model.User)
	return u, ok
}

func (s *Server) issueSession(w http.ResponseWriter, u model.User) error {
	now := s.now()
	claims := sessionClaims{
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(s.cfg.SessionTTL),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}

func (s *Server) parseSession(raw string) (model.User, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.User{}, err
	}
	if claims.Subject == "" {
		return model.User{}, errors.New("session without subject")
	}
	return model.User{Email: claims.Subject, Name: claims.Name, IsAdmin: claims.IsAdmin}, nil
}

// authenticate rejects requests without a valid session cookie with 401 and
// the original JSON shape.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			writeFailure(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		u, err := s.parseSession(c.Value)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}
