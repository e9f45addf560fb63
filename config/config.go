package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpServer    HttpServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	MessageStream MessageStreamConfig
	HttpClient    HttpClientConfig
	UserService   UserServiceConfig
	EventService  EventServiceConfig
	Booking       BookingConfig
}

type HttpServerConfig struct {
	Port string `envconfig:"HTTP_PORT" default:"8083"`
}

type DatabaseConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         string `envconfig:"DB_PORT" default:"5432"`
	Username     string `envconfig:"DB_USERNAME" default:"postgres"`
	Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name         string `envconfig:"DB_NAME" default:"ticket_service"`
	SSLMode      string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type MessageStreamConfig struct {
	Host     string `envconfig:"AMQP_HOST" default:"localhost"`
	Port     string `envconfig:"AMQP_PORT" default:"5672"`
	Username string `envconfig:"AMQP_USERNAME" default:"guest"`
	Password string `envconfig:"AMQP_PASSWORD" default:"guest"`
}

type HttpClientConfig struct {
	// Type selects the circuit breaker strategy: consecutive, rate or threshold.
	Type       string        `envconfig:"HTTP_CLIENT_CB_TYPE" default:"consecutive"`
	Threshold  int64         `envconfig:"HTTP_CLIENT_CB_THRESHOLD" default:"5"`
	ErrorRate  float64       `envconfig:"HTTP_CLIENT_CB_ERROR_RATE" default:"0.65"`
	MinSamples int64         `envconfig:"HTTP_CLIENT_CB_MIN_SAMPLES" default:"10"`
	Timeout    time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"5s"`
}

type UserServiceConfig struct {
	Host string `envconfig:"USER_SERVICE_HOST" default:"localhost"`
	Port string `envconfig:"USER_SERVICE_PORT" default:"8081"`
}

type EventServiceConfig struct {
	Host string `envconfig:"EVENT_SERVICE_HOST" default:"localhost"`
	Port string `envconfig:"EVENT_SERVICE_PORT" default:"9097"`
}

type BookingConfig struct {
	// HoldDuration is how long a PENDING booking keeps its reserved stock
	// before the expiry task releases it.
	HoldDuration time.Duration `envconfig:"BOOKING_HOLD_DURATION" default:"30m"`
	TicketTypes  []string      `envconfig:"BOOKING_TICKET_TYPES" default:"GOLD,SILVER,VIP"`
}

func InitConfig() *Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return &cfg
}
