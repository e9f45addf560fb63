package response

type UserServiceValidate struct {
	IsValid   bool   `json:"is_valid"`
	UserID    int64  `json:"user_id"`
	EmailUser string `json:"email_user"`
}

// EventStatus is the slice of the event service's payload the booking
// path cares about.
type EventStatus struct {
	Title      string `json:"title"`
	IsApproved bool   `json:"is_approved"`
	IsExpired  bool   `json:"is_expired"`
}

type Ticket struct {
	ID         string  `json:"id"`
	CustomerID int64   `json:"customer_id"`
	EventID    int64   `json:"event_id"`
	TicketType string  `json:"ticket_type"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

type EventTicket struct {
	ID                int64   `json:"id"`
	EventID           int64   `json:"event_id"`
	TicketType        string  `json:"ticket_type"`
	UnitPrice         float64 `json:"unit_price"`
	AvailableQuantity int     `json:"available_quantity"`
}

type TicketPrice struct {
	EventID    int64   `json:"event_id"`
	TicketType string  `json:"ticket_type"`
	UnitPrice  float64 `json:"unit_price"`
}
