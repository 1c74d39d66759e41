package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
	jwt_internal "github.com/grouptalk-dev/grouptalk/shared/jwt"
)

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

const accessTokenCookie = "accessToken"

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
	loginURL   string
}

func NewAuth(jwtService jwt_internal.JwtService, loginURL string) *Auth {
	return &Auth{jwtService: jwtService, loginURL: loginURL}
}

// OptionalAuth populates user context when a valid token is present but never rejects.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, _ := a.extractUser(r); user != nil {
				ctx := context.WithValue(r.Context(), UserClaimsKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NeedAuth requires a valid token; browser clients get redirected to login.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				http.Redirect(w, r, a.loginURL, http.StatusSeeOther)
				return
			}
			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractUser extracts and validates the user from the JWT token in the request.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	var tokenString string
	if accessCookie, err := r.Cookie(accessTokenCookie); err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	uidFloat, ok := claims["uid"].(float64)
	if !ok {
		return nil, errInvalidClaims
	}

	name, ok := claims["name"].(string)
	if !ok {
		return nil, errInvalidClaims
	}

	isAdmin, ok := claims["admin"].(bool)
	if !ok {
		return nil, errInvalidClaims
	}

	avatar, _ := claims["avatar"].(string) // optional

	return &domain.User{
		Id:        int64(uidFloat),
		Name:      name,
		AvatarURL: avatar,
		Admin:     isAdmin,
	}, nil
}

// GetUserFromContext returns the authenticated user, or nil.
func GetUserFromContext(r *http.Request) *domain.User {
	user, _ := r.Context().Value(UserClaimsKey).(*domain.User)
	return user
}

var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }
