package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"crisis-quiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// PlayerEnsurer creates a player record on first sight of an identity.
type PlayerEnsurer interface {
	EnsurePlayer(ctx context.Context, playerID, name string) (domain.User, error)
}

// Identity is the authenticated caller.
type Identity struct {
	PlayerID string
	Name     string
}

type playerClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type identityKey struct{}

// Authenticator verifies HS256 bearer tokens issued elsewhere. The subject
// claim is the player id and the name claim is the display name.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (a *Authenticator) Verify(token string) (Identity, error) {
	claims := &playerClaims{}
	_, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, errors.New("subject claim is empty")
	}
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = claims.Subject
	}
	return Identity{PlayerID: claims.Subject, Name: name}, nil
}

// requirePlayer rejects requests without a valid bearer token and makes sure
// the caller has a player record before the handler runs.
func requirePlayer(auth *Authenticator, players PlayerEnsurer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			id, err := auth.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			if _, err := players.EnsurePlayer(r.Context(), id.PlayerID, id.Name); err != nil {
				writeServiceError(w, logger, err)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFrom(r *http.Request) Identity {
	id, _ := r.Context().Value(identityKey{}).(Identity)
	return id
}
