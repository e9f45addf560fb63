package request

type BookTicket struct {
	EventID    int64  `json:"event_id" validate:"required"`
	TicketType string `json:"ticket_type" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

type CancelBooking struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type TicketClassSpec struct {
	TicketType    string  `json:"ticket_type" validate:"required"`
	UnitPrice     float64 `json:"unit_price" validate:"gte=0"`
	TotalQuantity int     `json:"total_quantity" validate:"gte=0"`
}

type CreateEventTickets struct {
	EventID int64             `json:"event_id" validate:"required"`
	Tickets []TicketClassSpec `json:"tickets" validate:"required,min=1,dive"`
}

type BookingHoldExpiration struct {
	BookingID string `json:"booking_id" validate:"required"`
}

type PoisonedQueue struct {
	TopicTarget string      `json:"topic_target" validate:"required"`
	ErrorMsg    string      `json:"error_msg" validate:"required"`
	Payload     interface{} `json:"payload" validate:"required"`
}

type BookingCreatedMessage struct {
	BookingID  string  `json:"booking_id"`
	CustomerID int64   `json:"customer_id"`
	EventID    int64   `json:"event_id"`
	TicketType string  `json:"ticket_type"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type BookingCancelledMessage struct {
	BookingID  string `json:"booking_id"`
	EventID    int64  `json:"event_id"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
}
