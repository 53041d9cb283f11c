package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/actor"
	"gowaay/internal/app/services/auth"
	domainauth "gowaay/internal/domain/auth"
	domainuser "gowaay/internal/domain/user"
)

const principalKey = "gowaay.principal"

// principal is the authenticated caller of a request.
type principal struct {
	User  *domainuser.User
	Roles []string
	Token string
}

func (p principal) ID() string {
	if p.User == nil {
		return ""
	}
	return string(p.User.ID)
}

func (p principal) actor() actor.Actor { return actor.Actor{UserID: p.ID(), Roles: p.Roles} }

// AuthMiddleware resolves bearer tokens. Requests without a valid token continue
// anonymously and the route decides whether that is enough.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	defer c.Next()
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		return
	}
	ctx := c.Request.Context()
	resolved, err := m.Service.ResolveToken(ctx, token)
	if err != nil {
		if m.Logger != nil && !errors.Is(err, domainauth.ErrSessionNotFound) {
			m.Logger.DebugContext(ctx, "bearer token rejected", "error", err)
		}
		return
	}
	p := principal{User: resolved.User, Token: token}
	for _, r := range resolved.Session.Roles {
		p.Roles = append(p.Roles, string(r))
	}
	c.Set(principalKey, p)
	c.Request = c.Request.WithContext(actor.WithActor(ctx, p.actor()))
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	p, ok := c.Value(principalKey).(principal)
	return p, ok
}

// requireRole aborts with 401 for anonymous callers and 403 when role is set
// and missing.
func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	switch {
	case !ok:
		respondFailure(c, http.StatusUnauthorized, "authentication required")
	case role != "" && !p.actor().HasRole(role):
		respondFailure(c, http.StatusForbidden, "insufficient permissions")
	default:
		return p, true
	}
	return principal{}, false
}

func bearerToken(header string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
