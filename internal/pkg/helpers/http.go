package helpers

import (
	"net/http"
	"ticket-service/internal/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.elastic.co/apm"
)

type Meta struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

func RespSuccess(ctx *fiber.Ctx, log *otelzap.Logger, data interface{}, message string) error {
	return ctx.Status(http.StatusOK).JSON(Response{
		Meta: Meta{Code: http.StatusOK, Message: message},
		Data: data,
	})
}

// RespError maps an error onto the response envelope using the status
// carried by the error kind. Server-side failures are reported to APM.
func RespError(ctx *fiber.Ctx, log *otelzap.Logger, err error) error {
	code := errors.HttpCode(err)
	if code >= http.StatusInternalServerError {
		apm.CaptureError(ctx.UserContext(), err).Send()
	}

	return ctx.Status(code).JSON(Response{
		Meta: Meta{Code: code, Message: err.Error()},
	})
}
