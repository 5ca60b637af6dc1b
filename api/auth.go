package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/warp/campus-ledger/domain"
)

// Claims is the bearer token payload. The subject is the actor id.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for actor.
func IssueToken(actor domain.Actor, issuer, key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: actor.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}

// ParseToken validates a token and returns the actor it names.
func ParseToken(tokenStr, issuer, key string) (domain.Actor, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return domain.Actor{}, errors.New("issuer mismatch")
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("token has no subject")
	}
	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return domain.Actor{ID: claims.Subject, Name: name}, nil
}

type actorKey struct{}

// ActorFrom returns the actor stored by ActorMiddleware, or the system actor.
func ActorFrom(ctx context.Context) domain.Actor {
	if a, ok := ctx.Value(actorKey{}).(domain.Actor); ok {
		return a
	}
	return domain.SystemActor
}

// ActorMiddleware resolves who is calling.
//
// With a signing key every request needs a valid "Authorization: Bearer"
// token. Without one (local setups) the X-Actor-ID and X-Actor-Name headers
// are trusted, falling back to the system actor.
func ActorMiddleware(issuer, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := domain.SystemActor
			if key != "" {
				header := r.Header.Get("Authorization")
				if !strings.HasPrefix(header, "Bearer ") {
					writeError(w, http.StatusUnauthorized, "missing bearer token", nil)
					return
				}
				a, err := ParseToken(strings.TrimPrefix(header, "Bearer "), issuer, key)
				if err != nil {
					writeError(w, http.StatusUnauthorized, "invalid token", err)
					return
				}
				actor = a
			} else if id := r.Header.Get("X-Actor-ID"); id != "" {
				actor = domain.Actor{ID: id, Name: r.Header.Get("X-Actor-Name")}
				if actor.Name == "" {
					actor.Name = id
				}
			}
			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
