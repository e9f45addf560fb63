package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"ticket-service/config"
	"ticket-service/internal/module/ticket/models/entity"
	"ticket-service/internal/module/ticket/models/response"
	"ticket-service/internal/pkg/errors"
	"ticket-service/internal/pkg/scheduler"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const ticketClassCacheTTL = 30 * time.Second

type repositories struct {
	db                 *sqlx.DB
	log                *otelzap.Logger
	httpClient         *circuit.HTTPClient
	redisClient        *redis.Client
	schedulerClient    *asynq.Client
	schedulerInspector *asynq.Inspector
	cfgUserService     *config.UserServiceConfig
	cfgEventService    *config.EventServiceConfig
}

type Repositories interface {
	// http
	ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error)
	GetEvent(ctx context.Context, eventID int64) (response.EventStatus, error)
	// db - ticket class inventory
	CreateTicketClasses(ctx context.Context, eventID int64, classes []entity.TicketClass) error
	FindTicketClass(ctx context.Context, eventID int64, className string) (entity.TicketClass, error)
	FindTicketClassesByEventID(ctx context.Context, eventID int64) ([]entity.TicketClass, error)
	ReserveStock(ctx context.Context, eventID int64, className string, quantity int) (float64, error)
	ReleaseStock(ctx context.Context, eventID int64, className string, quantity int) error
	// db - bookings
	InsertBooking(ctx context.Context, booking *entity.Booking) error
	FindBookingByID(ctx context.Context, bookingID string) (entity.Booking, error)
	FindBookingsByCustomerID(ctx context.Context, customerID int64) ([]entity.Booking, error)
	CancelBooking(ctx context.Context, booking *entity.Booking) error
	UpdateBookingTaskID(ctx context.Context, bookingID string, taskID string) error
	// scheduler
	SetTaskScheduler(ctx context.Context, delay time.Duration, payload []byte) (string, error)
	DeleteTaskScheduler(ctx context.Context, taskID string) error
}

func New(db *sqlx.DB, log *otelzap.Logger, httpClient *circuit.HTTPClient, redisClient *redis.Client, schedulerClient *asynq.Client, schedulerInspector *asynq.Inspector, cfgUserService *config.UserServiceConfig, cfgEventService *config.EventServiceConfig) Repositories {
	return &repositories{
		db:                 db,
		log:                log,
		httpClient:         httpClient,
		redisClient:        redisClient,
		schedulerClient:    schedulerClient,
		schedulerInspector: schedulerInspector,
		cfgUserService:     cfgUserService,
		cfgEventService:    cfgEventService,
	}
}

// ValidateToken implements Repositories.
func (r *repositories) ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error) {
	url := fmt.Sprintf("http://%s:%s/api/private/token/validate?token=%s", r.cfgUserService.Host, r.cfgUserService.Port, token)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return response.UserServiceValidate{}, errors.DependencyUnavailable("user service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		r.log.Ctx(ctx).Error(fmt.Sprintf("invalid token, status code: %d", resp.StatusCode))
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	var respData response.UserServiceValidate
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&respData); err != nil {
		return response.UserServiceValidate{}, errors.InternalServerError("error decode user service response")
	}

	if !respData.IsValid {
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	return respData, nil
}

// GetEvent implements Repositories. The event service is an unreliable
// remote dependency: transport errors and timeouts surface as
// DependencyUnavailable so the caller knows a retry may help.
func (r *repositories) GetEvent(ctx context.Context, eventID int64) (response.EventStatus, error) {
	url := fmt.Sprintf("http://%s:%s/events/%d", r.cfgEventService.Host, r.cfgEventService.Port, eventID)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		r.log.Ctx(ctx).Error(fmt.Sprintf("error call event service: %v", err))
		return response.EventStatus{}, errors.DependencyUnavailable("event service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return response.EventStatus{}, errors.NotFound("event not found")
	}
	if resp.StatusCode != 200 {
		r.log.Ctx(ctx).Error(fmt.Sprintf("event service returned status code: %d", resp.StatusCode))
		return response.EventStatus{}, errors.DependencyUnavailable("event service unavailable")
	}

	var respData response.EventStatus
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&respData); err != nil {
		return response.EventStatus{}, errors.InternalServerError("error decode event service response")
	}

	return respData, nil
}

// CreateTicketClasses implements Repositories.
func (r *repositories) CreateTicketClasses(ctx context.Context, eventID int64, classes []entity.TicketClass) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.InternalServerError("error starting transaction")
	}

	query := `
		INSERT INTO ticket_classes (event_id, class_name, unit_price, available_quantity, created_at)
		VALUES (:event_id, :class_name, :unit_price, :available_quantity, :created_at)
	`
	for _, class := range classes {
		if _, err := tx.NamedExecContext(ctx, query, class); err != nil {
			tx.Rollback()
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
				return errors.Conflict(fmt.Sprintf("ticket type %s already defined for event %d", class.ClassName, eventID))
			}
			return errors.InternalServerError("error insert ticket class")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.InternalServerError("error committing transaction")
	}

	for _, class := range classes {
		r.invalidateTicketClassCache(ctx, eventID, class.ClassName)
	}

	return nil
}

// FindTicketClass implements Repositories. Reads go through a short
// lived redis cache; reserve and release invalidate it.
func (r *repositories) FindTicketClass(ctx context.Context, eventID int64, className string) (entity.TicketClass, error) {
	var ticketClass entity.TicketClass

	cached, err := r.redisClient.Get(ctx, ticketClassCacheKey(eventID, className)).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(cached), &ticketClass); err == nil {
			return ticketClass, nil
		}
	}

	query := `SELECT * FROM ticket_classes WHERE event_id = $1 AND class_name = $2`
	err = r.db.GetContext(ctx, &ticketClass, query, eventID, className)
	if err == sql.ErrNoRows {
		return entity.TicketClass{}, errors.NotFound("ticket type not found for this event")
	}
	if err != nil {
		return entity.TicketClass{}, errors.InternalServerError("error find ticket class")
	}

	if payload, err := json.Marshal(ticketClass); err == nil {
		r.redisClient.Set(ctx, ticketClassCacheKey(eventID, className), payload, ticketClassCacheTTL)
	}

	return ticketClass, nil
}

// FindTicketClassesByEventID implements Repositories.
func (r *repositories) FindTicketClassesByEventID(ctx context.Context, eventID int64) ([]entity.TicketClass, error) {
	var ticketClasses []entity.TicketClass
	query := `SELECT * FROM ticket_classes WHERE event_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &ticketClasses, query, eventID); err != nil {
		return nil, errors.InternalServerError("error find ticket classes by event id")
	}
	return ticketClasses, nil
}

// ReserveStock implements Repositories. The row lock taken by SELECT FOR
// UPDATE is the serialization point for concurrent reservations on the
// same (event_id, class_name): the read-check-decrement runs as one
// transaction, so two reservations can never jointly overdraw the stock.
func (r *repositories) ReserveStock(ctx context.Context, eventID int64, className string, quantity int) (float64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.InternalServerError("error starting transaction")
	}

	var ticketClass entity.TicketClass
	query := `SELECT * FROM ticket_classes WHERE event_id = $1 AND class_name = $2 FOR UPDATE`
	err = tx.GetContext(ctx, &ticketClass, query, eventID, className)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return 0, errors.NotFound("ticket type not found for this event")
	}
	if err != nil {
		tx.Rollback()
		return 0, errors.InternalServerError("error locking ticket class row")
	}

	if ticketClass.AvailableQuantity < quantity {
		tx.Rollback()
		return 0, errors.InsufficientStock(ticketClass.AvailableQuantity)
	}

	updateQuery := `
		UPDATE ticket_classes
		SET available_quantity = available_quantity - $3, updated_at = NOW()
		WHERE event_id = $1 AND class_name = $2
	`
	if _, err := tx.ExecContext(ctx, updateQuery, eventID, className, quantity); err != nil {
		tx.Rollback()
		return 0, errors.InternalServerError("error decrement stock")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.InternalServerError("error committing transaction")
	}

	r.invalidateTicketClassCache(ctx, eventID, className)

	return ticketClass.UnitPrice, nil
}

// ReleaseStock implements Repositories. The quantity always originates
// from a prior successful reserve, so adding it back needs no upper
// bound check.
func (r *repositories) ReleaseStock(ctx context.Context, eventID int64, className string, quantity int) error {
	query := `
		UPDATE ticket_classes
		SET available_quantity = available_quantity + $3, updated_at = NOW()
		WHERE event_id = $1 AND class_name = $2
	`
	result, err := r.db.ExecContext(ctx, query, eventID, className, quantity)
	if err != nil {
		return errors.InternalServerError("error increment stock")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.InternalServerError("error increment stock")
	}
	if rows == 0 {
		return errors.NotFound("ticket type not found for this event")
	}

	r.invalidateTicketClassCache(ctx, eventID, className)

	return nil
}

// InsertBooking implements Repositories.
func (r *repositories) InsertBooking(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, customer_id, event_id, class_name, quantity, total_price, status, created_at)
		VALUES (:id, :customer_id, :event_id, :class_name, :quantity, :total_price, :status, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return errors.InternalServerError("error insert booking")
	}
	return nil
}

// FindBookingByID implements Repositories.
func (r *repositories) FindBookingByID(ctx context.Context, bookingID string) (entity.Booking, error) {
	var booking entity.Booking
	query := `SELECT * FROM bookings WHERE id = $1`
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if err == sql.ErrNoRows {
		return entity.Booking{}, errors.NotFound("booking not found")
	}
	if err != nil {
		return entity.Booking{}, errors.InternalServerError("error find booking by id")
	}
	return booking, nil
}

// FindBookingsByCustomerID implements Repositories.
func (r *repositories) FindBookingsByCustomerID(ctx context.Context, customerID int64) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := `SELECT * FROM bookings WHERE customer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, customerID); err != nil {
		return nil, errors.InternalServerError("error find bookings by customer id")
	}
	return bookings, nil
}

// CancelBooking implements Repositories. The status flip and the stock
// release run in one transaction, and the flip is conditional on the
// booking not being cancelled yet: under concurrent cancels of the same
// booking, exactly one transaction releases the stock.
func (r *repositories) CancelBooking(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.InternalServerError("error starting transaction")
	}

	flipQuery := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $2
	`
	result, err := tx.ExecContext(ctx, flipQuery, booking.ID, entity.BookingStatusCancelled)
	if err != nil {
		tx.Rollback()
		return errors.InternalServerError("error cancel booking")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return errors.InternalServerError("error cancel booking")
	}
	if rows == 0 {
		tx.Rollback()
		return errors.InvalidState("booking already cancelled")
	}

	releaseQuery := `
		UPDATE ticket_classes
		SET available_quantity = available_quantity + $3, updated_at = NOW()
		WHERE event_id = $1 AND class_name = $2
	`
	if _, err := tx.ExecContext(ctx, releaseQuery, booking.EventID, booking.ClassName, booking.Quantity); err != nil {
		tx.Rollback()
		return errors.InternalServerError("error release stock")
	}

	if err := tx.Commit(); err != nil {
		return errors.InternalServerError("error committing transaction")
	}

	r.invalidateTicketClassCache(ctx, booking.EventID, booking.ClassName)

	return nil
}

// UpdateBookingTaskID implements Repositories.
func (r *repositories) UpdateBookingTaskID(ctx context.Context, bookingID string, taskID string) error {
	query := `UPDATE bookings SET task_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, bookingID, taskID); err != nil {
		return errors.InternalServerError("error update booking task id")
	}
	return nil
}

// SetTaskScheduler implements Repositories.
func (r *repositories) SetTaskScheduler(ctx context.Context, delay time.Duration, payload []byte) (string, error) {
	task := asynq.NewTask(scheduler.TypeBookingHoldExpired, payload)
	info, err := r.schedulerClient.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if err != nil {
		return "", errors.InternalServerError("error enqueue scheduler task")
	}
	return info.ID, nil
}

// DeleteTaskScheduler implements Repositories.
func (r *repositories) DeleteTaskScheduler(ctx context.Context, taskID string) error {
	if err := r.schedulerInspector.DeleteTask("default", taskID); err != nil {
		return errors.InternalServerError("error delete scheduler task")
	}
	return nil
}

func (r *repositories) invalidateTicketClassCache(ctx context.Context, eventID int64, className string) {
	if err := r.redisClient.Del(ctx, ticketClassCacheKey(eventID, className)).Err(); err != nil {
		r.log.Ctx(ctx).Warn(fmt.Sprintf("error invalidate ticket class cache: %v", err))
	}
}

func ticketClassCacheKey(eventID int64, className string) string {
	return fmt.Sprintf("ticket_class:%d:%s", eventID, className)
}
