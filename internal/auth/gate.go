package auth

import (
	"log/slog"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
)

// SessionCookieName is the single cookie carrying the session on every route.
const SessionCookieName = "session"

// userContextKey is where the gate stores the resolved user in the echo context.
const userContextKey = "user"

// Gate resolves the caller of a request from its session cookie. It only knows
// about cookies and domain errors; status codes are assigned by the error handler.
type Gate struct {
	sessions *SessionManager
	signer   *CookieSigner
	secure   bool
}

// NewGate creates a gate. secure marks issued cookies Secure (production).
func NewGate(sessions *SessionManager, signer *CookieSigner, secure bool) *Gate {
	return &Gate{sessions: sessions, signer: signer, secure: secure}
}

// resolve maps a raw cookie value to a user, or ErrUnauthorized.
func (g *Gate) resolve(c echo.Context, value string) (*model.User, error) {
	token, err := g.signer.Verify(value)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := g.sessions.GetSession(c.Request().Context(), token)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "session lookup failed", "error", err)
		return nil, apperrors.ErrUnauthorized
	}
	if user == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// GetCurrentUser returns the caller, or nil when the cookie is absent or does not
// resolve to a live session.
func (g *Gate) GetCurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get(userContextKey).(*model.User); ok {
		return u
	}
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	user, err := g.resolve(c, cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// RequireAuth returns middleware rejecting requests without a live session with
// ErrUnauthorized. On success the user is available through UserFromContext.
func (g *Gate) RequireAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + SessionCookieName,
		ContextKey:  userContextKey,
		ParseTokenFunc: func(c echo.Context, value string) (interface{}, error) {
			return g.resolve(c, value)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrUnauthorized
		},
	})
}

// UserFromContext returns the user stored by RequireAuth, or nil.
func UserFromContext(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}

// SetSessionCookie writes the signed session cookie.
func (g *Gate) SetSessionCookie(c echo.Context, token string) error {
	maxAge := g.sessions.MaxAge()
	value, err := g.signer.Sign(token, maxAge)
	if err != nil {
		return err
	}
	c.SetCookie(g.cookie(value, int(maxAge/time.Second)))
	return nil
}

// ClearSessionCookie expires the session cookie in the browser.
func (g *Gate) ClearSessionCookie(c echo.Context) {
	c.SetCookie(g.cookie("", -1))
}

// TokenFromRequest returns the verified session token of the request cookie, if any.
func (g *Gate) TokenFromRequest(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, err := g.signer.Verify(cookie.Value)
	if err != nil {
		return ""
	}
	return token
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
