package usecases

import (
	"context"
	"database/sql"
	goerrors "errors"
	"fmt"
	"strings"
	"ticket-service/config"
	"ticket-service/internal/module/ticket/models/entity"
	"ticket-service/internal/module/ticket/models/request"
	"ticket-service/internal/module/ticket/models/response"
	"ticket-service/internal/module/ticket/repositories"
	"ticket-service/internal/pkg/errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redsync/redsync/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const (
	TopicBookingCreated   = "booking_created"
	TopicBookingCancelled = "booking_cancelled"
)

type usecase struct {
	repo        repositories.Repositories
	log         *otelzap.Logger
	publish     message.Publisher
	redsync     *redsync.Redsync
	holdTTL     time.Duration
	ticketTypes map[string]bool
}

type Usecase interface {
	// http
	BookTicket(ctx context.Context, payload *request.BookTicket, customerID int64) (response.Ticket, error)
	CancelTicket(ctx context.Context, bookingID string, customerID int64) error
	ShowBookings(ctx context.Context, customerID int64) ([]response.Ticket, error)
	CreateEventTickets(ctx context.Context, payload *request.CreateEventTickets) error
	ShowEventTickets(ctx context.Context, eventID int64) ([]response.EventTicket, error)
	GetTicketPrice(ctx context.Context, eventID int64, ticketType string) (response.TicketPrice, error)
	// queue
	ConsumeCancelBookingQueue(ctx context.Context, payload *request.CancelBooking) error
	// scheduler
	ExpireBookingHold(ctx context.Context, payload *request.BookingHoldExpiration) error
}

func New(repo repositories.Repositories, log *otelzap.Logger, publish message.Publisher, rs *redsync.Redsync, cfg *config.BookingConfig) Usecase {
	ticketTypes := make(map[string]bool, len(cfg.TicketTypes))
	for _, t := range cfg.TicketTypes {
		ticketTypes[strings.ToUpper(t)] = true
	}

	return &usecase{
		repo:        repo,
		log:         log,
		publish:     publish,
		redsync:     rs,
		holdTTL:     cfg.HoldDuration,
		ticketTypes: ticketTypes,
	}
}

// BookTicket drives one booking: event eligibility check, stock
// reservation, booking insert. The reserve and the insert are
// failure-atomic: a failed insert triggers a compensating release.
func (u *usecase) BookTicket(ctx context.Context, payload *request.BookTicket, customerID int64) (response.Ticket, error) {
	className, err := u.normalizeTicketType(payload.TicketType)
	if err != nil {
		return response.Ticket{}, err
	}

	event, err := u.repo.GetEvent(ctx, payload.EventID)
	if err != nil {
		return response.Ticket{}, err
	}
	if event.IsExpired {
		return response.Ticket{}, errors.EventNotEligible("event is expired, booking not allowed")
	}
	if !event.IsApproved {
		return response.Ticket{}, errors.EventNotEligible("event is not approved yet")
	}

	unitPrice, err := u.repo.ReserveStock(ctx, payload.EventID, className, payload.Quantity)
	if err != nil {
		return response.Ticket{}, err
	}

	booking := &entity.Booking{
		ID:         uuid.New(),
		CustomerID: customerID,
		EventID:    payload.EventID,
		ClassName:  className,
		Quantity:   payload.Quantity,
		TotalPrice: unitPrice * float64(payload.Quantity),
		Status:     entity.BookingStatusPending,
		CreatedAt:  time.Now(),
	}

	if err := u.repo.InsertBooking(ctx, booking); err != nil {
		// Compensating release: the reservation must not leak when the
		// booking row never materialized.
		if relErr := u.repo.ReleaseStock(ctx, payload.EventID, className, payload.Quantity); relErr != nil {
			u.log.Ctx(ctx).Error(fmt.Sprintf("error release stock after failed booking insert: %v", relErr))
		}
		return response.Ticket{}, err
	}

	u.scheduleHoldExpiry(ctx, booking)
	u.publishBookingCreated(ctx, booking)

	return mapBookingResponse(booking), nil
}

// CancelTicket flips a booking to CANCELLED and returns its quantity to
// the inventory. CANCELLED is terminal: a second cancel fails with no
// inventory mutation.
func (u *usecase) CancelTicket(ctx context.Context, bookingID string, customerID int64) error {
	booking, err := u.repo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if customerID != 0 && booking.CustomerID != customerID {
		return errors.NotFound("booking not found")
	}

	if booking.Status == entity.BookingStatusCancelled {
		return errors.InvalidState("booking already cancelled")
	}

	if err := u.repo.CancelBooking(ctx, &booking); err != nil {
		return err
	}

	u.dropHoldExpiry(ctx, &booking)
	u.publishBookingCancelled(ctx, &booking)

	return nil
}

// ShowBookings implements Usecase.
func (u *usecase) ShowBookings(ctx context.Context, customerID int64) ([]response.Ticket, error) {
	bookings, err := u.repo.FindBookingsByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	resp := make([]response.Ticket, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, mapBookingResponse(&bookings[i]))
	}
	return resp, nil
}

// CreateEventTickets provisions the ticket classes for one event.
func (u *usecase) CreateEventTickets(ctx context.Context, payload *request.CreateEventTickets) error {
	now := time.Now()
	classes := make([]entity.TicketClass, 0, len(payload.Tickets))
	for _, t := range payload.Tickets {
		className, err := u.normalizeTicketType(t.TicketType)
		if err != nil {
			return err
		}
		classes = append(classes, entity.TicketClass{
			EventID:           payload.EventID,
			ClassName:         className,
			UnitPrice:         t.UnitPrice,
			AvailableQuantity: t.TotalQuantity,
			CreatedAt:         now,
		})
	}

	return u.repo.CreateTicketClasses(ctx, payload.EventID, classes)
}

// ShowEventTickets implements Usecase.
func (u *usecase) ShowEventTickets(ctx context.Context, eventID int64) ([]response.EventTicket, error) {
	classes, err := u.repo.FindTicketClassesByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resp := make([]response.EventTicket, 0, len(classes))
	for _, c := range classes {
		resp = append(resp, response.EventTicket{
			ID:                c.ID,
			EventID:           c.EventID,
			TicketType:        c.ClassName,
			UnitPrice:         c.UnitPrice,
			AvailableQuantity: c.AvailableQuantity,
		})
	}
	return resp, nil
}

// GetTicketPrice implements Usecase.
func (u *usecase) GetTicketPrice(ctx context.Context, eventID int64, ticketType string) (response.TicketPrice, error) {
	className, err := u.normalizeTicketType(ticketType)
	if err != nil {
		return response.TicketPrice{}, err
	}

	class, err := u.repo.FindTicketClass(ctx, eventID, className)
	if err != nil {
		return response.TicketPrice{}, err
	}

	return response.TicketPrice{
		EventID:    class.EventID,
		TicketType: class.ClassName,
		UnitPrice:  class.UnitPrice,
	}, nil
}

// ConsumeCancelBookingQueue handles cancel commands from sibling
// services (e.g. the payment service after a lapsed payment). Unlike
// the http path it treats an already cancelled booking as success, so
// redelivered messages do not end up on the poison queue.
func (u *usecase) ConsumeCancelBookingQueue(ctx context.Context, payload *request.CancelBooking) error {
	return u.cancelIfActive(ctx, payload.BookingID, "")
}

// ExpireBookingHold releases the stock of a PENDING booking whose hold
// window elapsed without payment.
func (u *usecase) ExpireBookingHold(ctx context.Context, payload *request.BookingHoldExpiration) error {
	return u.cancelIfActive(ctx, payload.BookingID, entity.BookingStatusPending)
}

// cancelIfActive cancels a booking from a background path. A redsync
// mutex keyed by booking id keeps replicas from racing each other on
// the same command; the conditional flip in CancelBooking remains the
// hard guarantee.
func (u *usecase) cancelIfActive(ctx context.Context, bookingID string, requiredStatus string) error {
	mutex := u.redsync.NewMutex("cancel_booking:"+bookingID,
		redsync.WithExpiry(30*time.Second),
		redsync.WithTries(1),
	)
	switch err := mutex.TryLockContext(ctx); {
	case err == nil:
		defer mutex.UnlockContext(ctx)
	case goerrors.Is(err, redsync.ErrFailed) || isLockTaken(err):
		u.log.Ctx(ctx).Info(fmt.Sprintf("cancel of booking %s already in progress elsewhere", bookingID))
		return nil
	default:
		// lock service trouble; the conditional flip below still keeps
		// the cancel exactly-once
		u.log.Ctx(ctx).Warn(fmt.Sprintf("error acquire cancel lock for booking %s: %v", bookingID, err))
	}

	booking, err := u.repo.FindBookingByID(ctx, bookingID)
	if err != nil {
		if errors.HttpCode(err) == 404 {
			u.log.Ctx(ctx).Warn(fmt.Sprintf("booking %s not found, dropping cancel command", bookingID))
			return nil
		}
		return err
	}

	if booking.Status == entity.BookingStatusCancelled {
		return nil
	}
	if requiredStatus != "" && booking.Status != requiredStatus {
		return nil
	}

	if err := u.repo.CancelBooking(ctx, &booking); err != nil {
		if errors.HttpCode(err) == 409 {
			// lost the race to another canceller, nothing left to do
			return nil
		}
		return err
	}

	u.dropHoldExpiry(ctx, &booking)
	u.publishBookingCancelled(ctx, &booking)

	return nil
}

func isLockTaken(err error) bool {
	var taken *redsync.ErrTaken
	return goerrors.As(err, &taken)
}

func (u *usecase) normalizeTicketType(ticketType string) (string, error) {
	className := strings.ToUpper(strings.TrimSpace(ticketType))
	if !u.ticketTypes[className] {
		return "", errors.NotFound(fmt.Sprintf("ticket type not found: %s", ticketType))
	}
	return className, nil
}

func (u *usecase) scheduleHoldExpiry(ctx context.Context, booking *entity.Booking) {
	payload, err := json.Marshal(request.BookingHoldExpiration{BookingID: booking.ID.String()})
	if err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error marshal hold expiration payload: %v", err))
		return
	}

	taskID, err := u.repo.SetTaskScheduler(ctx, u.holdTTL, payload)
	if err != nil {
		// the booking stands, it just will not auto-expire
		u.log.Ctx(ctx).Error(fmt.Sprintf("error schedule hold expiry for booking %s: %v", booking.ID, err))
		return
	}

	if err := u.repo.UpdateBookingTaskID(ctx, booking.ID.String(), taskID); err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error store hold expiry task id for booking %s: %v", booking.ID, err))
		return
	}

	booking.TaskID = sql.NullString{String: taskID, Valid: true}
}

func (u *usecase) dropHoldExpiry(ctx context.Context, booking *entity.Booking) {
	if !booking.TaskID.Valid {
		return
	}
	if err := u.repo.DeleteTaskScheduler(ctx, booking.TaskID.String); err != nil {
		// harmless: the expiry handler skips non-pending bookings
		u.log.Ctx(ctx).Warn(fmt.Sprintf("error delete hold expiry task for booking %s: %v", booking.ID, err))
	}
}

func (u *usecase) publishBookingCreated(ctx context.Context, booking *entity.Booking) {
	payload, _ := json.Marshal(request.BookingCreatedMessage{
		BookingID:  booking.ID.String(),
		CustomerID: booking.CustomerID,
		EventID:    booking.EventID,
		TicketType: booking.ClassName,
		Quantity:   booking.Quantity,
		TotalPrice: booking.TotalPrice,
	})

	if err := u.publish.Publish(TopicBookingCreated, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error publish booking created: %v", err))
	}
}

func (u *usecase) publishBookingCancelled(ctx context.Context, booking *entity.Booking) {
	payload, _ := json.Marshal(request.BookingCancelledMessage{
		BookingID:  booking.ID.String(),
		EventID:    booking.EventID,
		TicketType: booking.ClassName,
		Quantity:   booking.Quantity,
	})

	if err := u.publish.Publish(TopicBookingCancelled, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		u.log.Ctx(ctx).Error(fmt.Sprintf("error publish booking cancelled: %v", err))
	}
}

func mapBookingResponse(booking *entity.Booking) response.Ticket {
	return response.Ticket{
		ID:         booking.ID.String(),
		CustomerID: booking.CustomerID,
		EventID:    booking.EventID,
		TicketType: booking.ClassName,
		Quantity:   booking.Quantity,
		TotalPrice: booking.TotalPrice,
		Status:     booking.Status,
		CreatedAt:  booking.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
