package usecases_test

import (
	"context"
	"database/sql"
	"testing"
	"ticket-service/config"
	"ticket-service/internal/module/ticket/mocks"
	"ticket-service/internal/module/ticket/models/entity"
	"ticket-service/internal/module/ticket/models/request"
	"ticket-service/internal/module/ticket/models/response"
	"ticket-service/internal/module/ticket/usecases"
	"ticket-service/internal/pkg/errors"
	log_internal "ticket-service/internal/pkg/log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	uc       usecases.Usecase
	repoMock *mocks.Repositories
	p        message.Publisher
)

type mockPublisher struct{}

// Close implements message.Publisher.
func (m *mockPublisher) Close() error {
	return nil
}

// Publish implements message.Publisher.
func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	return nil
}

func NewMockPublisher() message.Publisher {
	return &mockPublisher{}
}

func setup() {
	repoMock = new(mocks.Repositories)
	p = NewMockPublisher()
	logger := log_internal.Setup()
	rs := redsync.New(goredis.NewPool(redisclient.NewClient(&redisclient.Options{Addr: "localhost:1"})))
	cfg := &config.BookingConfig{
		HoldDuration: 30 * time.Minute,
		TicketTypes:  []string{"GOLD", "SILVER", "VIP"},
	}
	uc = usecases.New(repoMock, logger, p, rs, cfg)
}

func teardown() {
	repoMock = nil
	uc = nil
}

func TestBookTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{
			EventID:    1,
			TicketType: "GOLD",
			Quantity:   3,
		}

		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{IsApproved: true, IsExpired: false}, nil)
		repoMock.On("ReserveStock", ctx, int64(1), "GOLD", 3).Return(float64(50), nil)
		repoMock.On("InsertBooking", ctx, mock.MatchedBy(func(b *entity.Booking) bool {
			return b.CustomerID == 7 && b.EventID == 1 && b.ClassName == "GOLD" &&
				b.Quantity == 3 && b.TotalPrice == 150 && b.Status == entity.BookingStatusPending
		})).Return(nil)
		repoMock.On("SetTaskScheduler", ctx, 30*time.Minute, mock.Anything).Return("task-1", nil)
		repoMock.On("UpdateBookingTaskID", ctx, mock.Anything, "task-1").Return(nil)

		resp, err := uc.BookTicket(ctx, &payload, 7)

		assert.NoError(t, err)
		assert.Equal(t, 3, resp.Quantity)
		assert.Equal(t, float64(150), resp.TotalPrice)
		assert.Equal(t, entity.BookingStatusPending, resp.Status)
	})

	t.Run("lowercase ticket type is normalized", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "gold", Quantity: 1}

		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{IsApproved: true}, nil)
		repoMock.On("ReserveStock", ctx, int64(1), "GOLD", 1).Return(float64(50), nil)
		repoMock.On("InsertBooking", ctx, mock.Anything).Return(nil)
		repoMock.On("SetTaskScheduler", ctx, mock.Anything, mock.Anything).Return("task-1", nil)
		repoMock.On("UpdateBookingTaskID", ctx, mock.Anything, "task-1").Return(nil)

		resp, err := uc.BookTicket(ctx, &payload, 7)

		assert.NoError(t, err)
		assert.Equal(t, "GOLD", resp.TicketType)
	})

	t.Run("unknown ticket type", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "PLATINUM", Quantity: 1}

		_, err := uc.BookTicket(ctx, &payload, 7)

		assert.Error(t, err)
		assert.Equal(t, 404, errors.HttpCode(err))
		repoMock.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything)
	})

	t.Run("expired event performs no reservation", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "GOLD", Quantity: 1}

		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{IsApproved: true, IsExpired: true}, nil)

		_, err := uc.BookTicket(ctx, &payload, 7)

		assert.Equal(t, errors.EventNotEligible("event is expired, booking not allowed"), err)
		repoMock.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unapproved event performs no reservation", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "GOLD", Quantity: 1}

		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{IsApproved: false, IsExpired: false}, nil)

		_, err := uc.BookTicket(ctx, &payload, 7)

		assert.Equal(t, errors.EventNotEligible("event is not approved yet"), err)
		repoMock.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("event service unavailable propagates unchanged", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "GOLD", Quantity: 1}

		expectedErr := errors.DependencyUnavailable("event service unavailable")
		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{}, expectedErr)

		_, err := uc.BookTicket(ctx, &payload, 7)

		assert.Equal(t, expectedErr, err)
	})

	t.Run("insufficient stock propagates unchanged", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "GOLD", Quantity: 8}

		expectedErr := errors.InsufficientStock(7)
		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{IsApproved: true}, nil)
		repoMock.On("ReserveStock", ctx, int64(1), "GOLD", 8).Return(float64(0), expectedErr)

		_, err := uc.BookTicket(ctx, &payload, 7)

		assert.Equal(t, expectedErr, err)
		repoMock.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
	})

	t.Run("failed insert releases the reservation", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.BookTicket{EventID: 1, TicketType: "GOLD", Quantity: 3}

		insertErr := errors.InternalServerError("error insert booking")
		repoMock.On("GetEvent", ctx, int64(1)).Return(response.EventStatus{IsApproved: true}, nil)
		repoMock.On("ReserveStock", ctx, int64(1), "GOLD", 3).Return(float64(50), nil)
		repoMock.On("InsertBooking", ctx, mock.Anything).Return(insertErr)
		repoMock.On("ReleaseStock", ctx, int64(1), "GOLD", 3).Return(nil)

		_, err := uc.BookTicket(ctx, &payload, 7)

		assert.Equal(t, insertErr, err)
		repoMock.AssertCalled(t, "ReleaseStock", ctx, int64(1), "GOLD", 3)
	})
}

func TestCancelTicket(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()

	activeBooking := entity.Booking{
		ID:         bookingID,
		CustomerID: 7,
		EventID:    1,
		ClassName:  "GOLD",
		Quantity:   3,
		TotalPrice: 150,
		Status:     entity.BookingStatusPending,
		TaskID:     sql.NullString{String: "task-1", Valid: true},
	}

	t.Run("success", func(t *testing.T) {
		setup()
		defer teardown()

		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(activeBooking, nil)
		repoMock.On("CancelBooking", ctx, &activeBooking).Return(nil)
		repoMock.On("DeleteTaskScheduler", ctx, "task-1").Return(nil)

		err := uc.CancelTicket(ctx, bookingID.String(), 7)

		assert.NoError(t, err)
	})

	t.Run("already cancelled fails and leaves inventory alone", func(t *testing.T) {
		setup()
		defer teardown()

		cancelled := activeBooking
		cancelled.Status = entity.BookingStatusCancelled
		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(cancelled, nil)

		err := uc.CancelTicket(ctx, bookingID.String(), 7)

		assert.Equal(t, errors.InvalidState("booking already cancelled"), err)
		repoMock.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything)
	})

	t.Run("booking not found", func(t *testing.T) {
		setup()
		defer teardown()

		expectedErr := errors.NotFound("booking not found")
		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(entity.Booking{}, expectedErr)

		err := uc.CancelTicket(ctx, bookingID.String(), 7)

		assert.Equal(t, expectedErr, err)
	})

	t.Run("other customer's booking is invisible", func(t *testing.T) {
		setup()
		defer teardown()

		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(activeBooking, nil)

		err := uc.CancelTicket(ctx, bookingID.String(), 8)

		assert.Equal(t, errors.NotFound("booking not found"), err)
		repoMock.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything)
	})
}

func TestShowBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		setup()
		defer teardown()

		bookingID := uuid.New()
		createdAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		repoMock.On("FindBookingsByCustomerID", ctx, int64(7)).Return([]entity.Booking{
			{
				ID:         bookingID,
				CustomerID: 7,
				EventID:    1,
				ClassName:  "GOLD",
				Quantity:   3,
				TotalPrice: 150,
				Status:     entity.BookingStatusPending,
				CreatedAt:  createdAt,
			},
		}, nil)

		resp, err := uc.ShowBookings(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, response.Ticket{
			ID:         bookingID.String(),
			CustomerID: 7,
			EventID:    1,
			TicketType: "GOLD",
			Quantity:   3,
			TotalPrice: 150,
			Status:     entity.BookingStatusPending,
			CreatedAt:  "2026-05-01 10:00:00",
		}, resp[0])
	})
}

func TestCreateEventTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateEventTickets{
			EventID: 1,
			Tickets: []request.TicketClassSpec{
				{TicketType: "GOLD", UnitPrice: 50, TotalQuantity: 10},
				{TicketType: "SILVER", UnitPrice: 25, TotalQuantity: 100},
			},
		}

		repoMock.On("CreateTicketClasses", ctx, int64(1), mock.MatchedBy(func(classes []entity.TicketClass) bool {
			return len(classes) == 2 && classes[0].ClassName == "GOLD" && classes[1].AvailableQuantity == 100
		})).Return(nil)

		err := uc.CreateEventTickets(ctx, &payload)

		assert.NoError(t, err)
	})

	t.Run("unknown ticket type", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateEventTickets{
			EventID: 1,
			Tickets: []request.TicketClassSpec{{TicketType: "BRONZE", UnitPrice: 10, TotalQuantity: 5}},
		}

		err := uc.CreateEventTickets(ctx, &payload)

		assert.Equal(t, 404, errors.HttpCode(err))
		repoMock.AssertNotCalled(t, "CreateTicketClasses", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate definition propagates conflict", func(t *testing.T) {
		setup()
		defer teardown()

		payload := request.CreateEventTickets{
			EventID: 1,
			Tickets: []request.TicketClassSpec{{TicketType: "GOLD", UnitPrice: 50, TotalQuantity: 10}},
		}

		expectedErr := errors.Conflict("ticket type GOLD already defined for event 1")
		repoMock.On("CreateTicketClasses", ctx, int64(1), mock.Anything).Return(expectedErr)

		err := uc.CreateEventTickets(ctx, &payload)

		assert.Equal(t, expectedErr, err)
	})
}

func TestGetTicketPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		setup()
		defer teardown()

		repoMock.On("FindTicketClass", ctx, int64(1), "GOLD").Return(entity.TicketClass{
			ID:        1,
			EventID:   1,
			ClassName: "GOLD",
			UnitPrice: 50,
		}, nil)

		resp, err := uc.GetTicketPrice(ctx, 1, "gold")

		assert.NoError(t, err)
		assert.Equal(t, response.TicketPrice{EventID: 1, TicketType: "GOLD", UnitPrice: 50}, resp)
	})

	t.Run("not defined for event", func(t *testing.T) {
		setup()
		defer teardown()

		expectedErr := errors.NotFound("ticket type not found for this event")
		repoMock.On("FindTicketClass", ctx, int64(1), "VIP").Return(entity.TicketClass{}, expectedErr)

		_, err := uc.GetTicketPrice(ctx, 1, "VIP")

		assert.Equal(t, expectedErr, err)
	})
}

func TestExpireBookingHold(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()

	t.Run("pending booking is cancelled", func(t *testing.T) {
		setup()
		defer teardown()

		booking := entity.Booking{
			ID:        bookingID,
			EventID:   1,
			ClassName: "GOLD",
			Quantity:  3,
			Status:    entity.BookingStatusPending,
			TaskID:    sql.NullString{String: "task-1", Valid: true},
		}

		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(booking, nil)
		repoMock.On("CancelBooking", ctx, &booking).Return(nil)
		repoMock.On("DeleteTaskScheduler", ctx, "task-1").Return(nil)

		err := uc.ExpireBookingHold(ctx, &request.BookingHoldExpiration{BookingID: bookingID.String()})

		assert.NoError(t, err)
	})

	t.Run("cancelled booking is left alone", func(t *testing.T) {
		setup()
		defer teardown()

		booking := entity.Booking{ID: bookingID, Status: entity.BookingStatusCancelled}
		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(booking, nil)

		err := uc.ExpireBookingHold(ctx, &request.BookingHoldExpiration{BookingID: bookingID.String()})

		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything)
	})

	t.Run("missing booking drops the task", func(t *testing.T) {
		setup()
		defer teardown()

		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(entity.Booking{}, errors.NotFound("booking not found"))

		err := uc.ExpireBookingHold(ctx, &request.BookingHoldExpiration{BookingID: bookingID.String()})

		assert.NoError(t, err)
	})
}

func TestConsumeCancelBookingQueue(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()

	t.Run("active booking is cancelled", func(t *testing.T) {
		setup()
		defer teardown()

		booking := entity.Booking{
			ID:        bookingID,
			EventID:   1,
			ClassName: "GOLD",
			Quantity:  3,
			Status:    entity.BookingStatusPending,
		}

		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(booking, nil)
		repoMock.On("CancelBooking", ctx, &booking).Return(nil)

		err := uc.ConsumeCancelBookingQueue(ctx, &request.CancelBooking{BookingID: bookingID.String()})

		assert.NoError(t, err)
	})

	t.Run("redelivered cancel for cancelled booking succeeds", func(t *testing.T) {
		setup()
		defer teardown()

		booking := entity.Booking{ID: bookingID, Status: entity.BookingStatusCancelled}
		repoMock.On("FindBookingByID", ctx, bookingID.String()).Return(booking, nil)

		err := uc.ConsumeCancelBookingQueue(ctx, &request.CancelBooking{BookingID: bookingID.String()})

		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything)
	})
}
