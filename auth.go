package funds

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt"
	"github.com/twitchtv/twirp"
	"github.com/yiplee/go-cache"
	"golang.org/x/sync/singleflight"
)

type session struct {
	signer    solana.PublicKey
	expiresAt int64
}

func (s *session) expired(now time.Time) bool {
	return s.expiresAt > 0 && now.Unix() >= s.expiresAt
}

// sessionStore drops expired sessions whenever a new one is stored.
type sessionStore map[string]cache.Item[*session]

func (m sessionStore) Get(key string) (cache.Item[*session], bool) {
	item, found := m[key]
	return item, found
}

func (m sessionStore) Set(key string, item cache.Item[*session]) {
	for k, v := range m {
		if v.IsExpired() {
			delete(m, k)
		}
	}

	m[key] = item
}

func (m sessionStore) Delete(key string) {
	delete(m, key)
}

func (m sessionStore) Each(fn func(key string, item cache.Item[*session]) bool) {
	for k, v := range m {
		if !fn(k, v) {
			break
		}
	}
}

func cacheSession(sessions *cache.Cache[string, *session], token string, s *session) {
	if s.expiresAt > 0 {
		sessions.Set(token, s, cache.WithExpiredAt(time.Unix(s.expiresAt, 0)))
		return
	}

	sessions.Set(token, s)
}

func extractBearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	return strings.TrimPrefix(token, "Bearer ")
}

// IssueToken signs an HS256 token whose subject is the signer's base58 key.
func IssueToken(issuer string, secret []byte, signer solana.PublicKey, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Issuer:    issuer,
		Subject:   signer.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verifyToken(token, issuer string, secret []byte) (*session, error) {
	var claims jwt.StandardClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return secret, nil
	}); err != nil {
		return nil, err
	}

	if claims.Issuer != issuer {
		return nil, errors.New("issuer mismatch")
	}

	signer, err := solana.PublicKeyFromBase58(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	return &session{
		signer:    signer,
		expiresAt: claims.ExpiresAt,
	}, nil
}

// handleAuth resolves the bearer token into a signer. Requests without a token
// pass through anonymously; handlers that mutate state require a signer.
func handleAuth(issuer string, secret []byte) func(next http.Handler) http.Handler {
	var (
		sessions = cache.NewWithStore[string, *session](sessionStore{})
		sf       singleflight.Group
	)

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			v, err, _ := sf.Do(token, func() (interface{}, error) {
				if s, ok := sessions.Get(token); ok && !s.expired(time.Now()) {
					return s, nil
				}

				s, err := verifyToken(token, issuer, secret)
				if err != nil {
					return nil, err
				}

				cacheSession(sessions, token, s)
				return s, nil
			})

			if err != nil {
				renderErr(w, twirp.Unauthenticated.Error(err.Error()))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSigner(ctx, v.(*session).signer)))
		}

		return http.HandlerFunc(fn)
	}
}
