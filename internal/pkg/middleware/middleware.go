package middleware

import (
	"fmt"
	"strings"
	"ticket-service/internal/module/ticket/repositories"
	"ticket-service/internal/pkg/errors"
	"ticket-service/internal/pkg/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type Middleware struct {
	Log  *otelzap.Logger
	Repo repositories.Repositories
}

// ValidateToken checks the bearer token against the user service and
// stores the resolved identity on the request context.
func (m *Middleware) ValidateToken(ctx *fiber.Ctx) error {
	auth := ctx.Get("Authorization")
	if auth == "" {
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("missing authorization header"))
	}

	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth {
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("invalid authorization header"))
	}

	resp, err := m.Repo.ValidateToken(ctx.UserContext(), token)
	if err != nil {
		m.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate token: %v", err))
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error validate token"))
	}

	ctx.Locals("user_id", resp.UserID)
	ctx.Locals("email_user", resp.EmailUser)

	return ctx.Next()
}
