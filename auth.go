package zenobjects

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// OAuth2Middleware attaches a bearer token from the supplied token source to
// every outgoing request. Token refresh is handled by the source.
func OAuth2Middleware(source oauth2.TokenSource) Middleware {
	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		token, err := source.Token()
		if err != nil {
			return nil, fmt.Errorf("zenobjects: fetch oauth2 token: %w", err)
		}
		token.SetAuthHeader(req)
		return next.RoundTrip(req)
	}
}

// JWTMiddleware signs a short-lived HS256 token per request and attaches it
// as a bearer credential. Useful for server-to-server integrations that
// exchange a shared secret instead of OAuth tokens.
func JWTMiddleware(secret []byte, subject string) Middleware {
	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		now := time.Now()
		claims := jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		if err != nil {
			return nil, fmt.Errorf("zenobjects: sign request token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+signed)
		return next.RoundTrip(req)
	}
}
