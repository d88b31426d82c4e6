package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	goauth "github.com/inertiapixel/goauth"
)

// AccessTokenHeader is the response header carrying a rotated access token
// after a transparent refresh.
const AccessTokenHeader = "X-Access-Token"

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims injected by [Authenticate] or
// [RequireAccess].
func ClaimsFromContext(ctx context.Context) (*goauth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*goauth.Claims)
	return claims, ok
}

// Options tunes the [Authenticate] guard.
//
// Options instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Options struct {
	// Cookie controls the refresh-token cookie. Zero value uses the
	// engine defaults: name "refresh_token", Path "/", Secure, strict
	// same-site.
	Cookie goauth.CookieConfig

	// RefreshTTL bounds the rotated cookie's Max-Age. Zero means
	// session-scoped cookie.
	RefreshTTL time.Duration
}

func (o Options) cookie() goauth.CookieConfig {
	c := o.Cookie
	if c.Name == "" {
		c.Name = "refresh_token"
		c.Path = "/"
		c.Secure = true
		c.SameSite = http.SameSiteStrictMode
	}
	return c
}

// Authenticate evaluates each request through the engine's full state
// machine. The access token comes from the Authorization bearer header, the
// refresh token from the configured cookie. When the engine rotates the
// session, the new refresh token replaces the cookie and the new access token
// is exposed through the X-Access-Token response header for the client to
// adopt. Rejections answer 401 with the reason string and nothing else;
// backend outages answer 503 so clients can retry instead of re-logging-in.
func Authenticate(engine *goauth.Engine, opts Options) func(http.Handler) http.Handler {
	cookieCfg := opts.cookie()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, string(goauth.ReasonInvalid), http.StatusUnauthorized)
				return
			}

			creds := goauth.Credentials{}
			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				creds.AccessToken = token
			}
			if cookie, err := r.Cookie(cookieCfg.Name); err == nil {
				creds.RefreshToken = cookie.Value
			}

			ctx := requestContext(r)

			decision, err := engine.Authenticate(ctx, creds)
			if err != nil && !errors.Is(err, goauth.ErrUnauthorized) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if err != nil || !decision.Accepted() {
				reason := goauth.ReasonInvalid
				if decision != nil && decision.Reason != "" {
					reason = decision.Reason
				}
				// A refresh token that lost rotation is dead; take the
				// cookie down with it.
				if decision != nil && decision.State == goauth.StateRefreshRejected {
					clearRefreshCookie(w, cookieCfg)
				}
				http.Error(w, string(reason), http.StatusUnauthorized)
				return
			}

			if decision.State == goauth.StateRefreshedOk {
				setRefreshCookie(w, cookieCfg, decision.RefreshToken, opts.RefreshTTL)
				w.Header().Set(AccessTokenHeader, decision.AccessToken)
			}

			reqCtx := context.WithValue(r.Context(), claimsContextKey{}, decision.Claims)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		})
	}
}

// RequireAccess verifies the bearer access token only; no refresh cookie is
// read and no rotation happens. Suitable for routes where the client owns
// token renewal.
func RequireAccess(engine *goauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, string(goauth.ReasonInvalid), http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, string(goauth.ReasonMissing), http.StatusUnauthorized)
				return
			}

			decision, err := engine.Authenticate(requestContext(r), goauth.Credentials{AccessToken: token})
			if err != nil && !errors.Is(err, goauth.ErrUnauthorized) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if err != nil || !decision.Accepted() {
				reason := goauth.ReasonInvalid
				if decision != nil && decision.Reason != "" {
					reason = decision.Reason
				}
				http.Error(w, string(reason), http.StatusUnauthorized)
				return
			}

			reqCtx := context.WithValue(r.Context(), claimsContextKey{}, decision.Claims)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		})
	}
}

func requestContext(r *http.Request) context.Context {
	ctx := goauth.WithUserAgent(r.Context(), r.UserAgent())
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = goauth.WithClientIP(ctx, host)
	} else if r.RemoteAddr != "" {
		ctx = goauth.WithClientIP(ctx, r.RemoteAddr)
	}
	return ctx
}

func setRefreshCookie(w http.ResponseWriter, cfg goauth.CookieConfig, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl / time.Second)
	}
	http.SetCookie(w, cookie)
}

func clearRefreshCookie(w http.ResponseWriter, cfg goauth.CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
		MaxAge:   -1,
	})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
