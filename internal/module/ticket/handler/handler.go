package handler

import (
	"context"
	"fmt"
	"strconv"
	"ticket-service/internal/module/ticket/models/request"
	"ticket-service/internal/module/ticket/usecases"
	"ticket-service/internal/pkg/errors"
	"ticket-service/internal/pkg/helpers"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type TicketHandler struct {
	Log       *otelzap.Logger
	Validator *validator.Validate
	Usecase   usecases.Usecase
	Publish   message.Publisher
}

func (h *TicketHandler) BookTicket(ctx *fiber.Ctx) error {
	var req request.BookTicket
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	customerID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.BookTicket(ctx.UserContext(), &req, customerID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error book ticket: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success book ticket")
}

func (h *TicketHandler) CancelTicket(ctx *fiber.Ctx) error {
	bookingID := ctx.Params("id")
	if err := h.Validator.Var(bookingID, "required,uuid"); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate booking id: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("invalid booking id"))
	}

	customerID := ctx.Locals("user_id").(int64)

	if err := h.Usecase.CancelTicket(ctx.UserContext(), bookingID, customerID); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error cancel ticket: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "success cancel ticket")
}

func (h *TicketHandler) ShowBookings(ctx *fiber.Ctx) error {
	customerID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.ShowBookings(ctx.UserContext(), customerID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error show bookings: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success show bookings")
}

func (h *TicketHandler) CreateEventTickets(ctx *fiber.Ctx) error {
	var req request.CreateEventTickets
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	if err := h.Usecase.CreateEventTickets(ctx.UserContext(), &req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error create event tickets: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "success create event tickets")
}

func (h *TicketHandler) ShowEventTickets(ctx *fiber.Ctx) error {
	eventID, err := strconv.ParseInt(ctx.Query("event_id"), 10, 64)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse event id: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse event id"))
	}

	resp, err := h.Usecase.ShowEventTickets(ctx.UserContext(), eventID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error show event tickets: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success show event tickets")
}

func (h *TicketHandler) GetTicketPrice(ctx *fiber.Ctx) error {
	eventID, err := strconv.ParseInt(ctx.Query("event_id"), 10, 64)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse event id: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse event id"))
	}

	ticketType := ctx.Query("ticket_type")
	if ticketType == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("ticket_type is required"))
	}

	resp, err := h.Usecase.GetTicketPrice(ctx.UserContext(), eventID, ticketType)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error get ticket price: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success get ticket price")
}

// ConsumeCancelBookingQueue handles cancel commands arriving over amqp.
// Messages that cannot be unmarshalled or processed go to the poison
// queue instead of being redelivered forever.
func (h *TicketHandler) ConsumeCancelBookingQueue(msg *message.Message) error {
	msg.Ack()

	var req request.CancelBooking
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error unmarshal message: %v", err))
		h.publishPoisoned(msg, err)
		return err
	}

	ctx := context.Background()

	if err := h.Usecase.ConsumeCancelBookingQueue(ctx, &req); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error consume cancel booking queue: %v", err))
		h.publishPoisoned(msg, err)
		return err
	}

	return nil
}

// ExpireBookingHold is the asynq task handler releasing a lapsed hold.
func (h *TicketHandler) ExpireBookingHold(ctx context.Context, t *asynq.Task) error {
	var req request.BookingHoldExpiration
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error unmarshal payload: %v", err))
		return err
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error validate payload: %v", err))
		return err
	}

	if err := h.Usecase.ExpireBookingHold(ctx, &req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error expire booking hold: %v", err))
		return err
	}

	return nil
}

func (h *TicketHandler) publishPoisoned(msg *message.Message, cause error) {
	reqPoisoned := request.PoisonedQueue{
		TopicTarget: "cancel_booking",
		ErrorMsg:    cause.Error(),
		Payload:     msg.Payload,
	}

	jsonPayload, _ := json.Marshal(reqPoisoned)

	if err := h.Publish.Publish("poisoned_queue", message.NewMessage(watermill.NewUUID(), jsonPayload)); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", err))
	}
}
