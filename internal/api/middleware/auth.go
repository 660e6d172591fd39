package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/pkg/jwthelper"
)

const principalKey = "principal"

var errMissingToken = errors.New("missing bearer token")

type Authenticator struct {
	signingKey string
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: signingKey,
	}
}

// VerifyJWT rejects requests without a valid bearer token and stores the
// token's principal on the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthenticated(errMissingToken))
			return
		}

		principal, err := jwthelper.ParseToken(a.signingKey, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		}

		SetPrincipal(ctx, principal)
		ctx.Next()
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket handshakes, so upgrades may pass the token as ?token= instead.
func bearerToken(ctx *gin.Context) (string, bool) {
	header := ctx.GetHeader("Authorization")
	if header == "" && websocket.IsWebSocketUpgrade(ctx.Request) {
		token := ctx.Query("token")
		return token, token != ""
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}

	return token, true
}

// RequireCapability must run after VerifyJWT.
func RequireCapability(c domain.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal, ok := GetPrincipal(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthenticated(domain.ErrUnauthenticated))
			return
		}

		if !principal.Role.Can(c) {
			response.RenderErr(ctx, response.ErrPermissionDenied(domain.ErrForbidden))
			return
		}

		ctx.Next()
	}
}

func SetPrincipal(ctx *gin.Context, p domain.Principal) {
	ctx.Set(principalKey, p)
}

func GetPrincipal(ctx *gin.Context) (domain.Principal, bool) {
	v, ok := ctx.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}

	p, ok := v.(domain.Principal)
	return p, ok
}
