package main

import (
	"context"
	"log"
	"ticket-service/config"
	"ticket-service/internal/module/ticket/handler"
	"ticket-service/internal/module/ticket/repositories"
	"ticket-service/internal/module/ticket/usecases"
	"ticket-service/internal/pkg/database"
	"ticket-service/internal/pkg/http"
	"ticket-service/internal/pkg/httpclient"
	log_internal "ticket-service/internal/pkg/log"
	"ticket-service/internal/pkg/messagestream"
	"ticket-service/internal/pkg/middleware"
	internal_redis "ticket-service/internal/pkg/redis"
	"ticket-service/internal/pkg/scheduler"
	router "ticket-service/internal/route"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/gofiber/fiber/v2"
	asynqpkg "github.com/hibiken/asynq"
)

func main() {
	cfg := config.InitConfig()

	app, messageRouters, sched, ticketHandler := initService(cfg)

	for _, r := range messageRouters {
		ctx := context.Background()
		go func(r *message.Router) {
			if err := r.Run(ctx); err != nil {
				log.Fatal(err)
			}
		}(r)
	}

	// delayed task worker (booking hold expiry)
	go sched.StartHandler(&cfg.Redis,
		[]string{scheduler.TypeBookingHoldExpired},
		[]func(ctx context.Context, t *asynqpkg.Task) error{ticketHandler.ExpireBookingHold},
	)

	// asynqmon dashboard
	go sched.StartMonitoring(&cfg.Redis)

	// start http server
	http.StartHttpServer(app, cfg.HttpServer.Port)
}

func initService(cfg *config.Config) (*fiber.App, []*message.Router, *scheduler.Scheduler, *handler.TicketHandler) {

	// init database
	db := database.GetConnection(&cfg.Database)
	// init redis
	redisClient := internal_redis.SetupClient(&cfg.Redis)
	// init logger
	logger := log_internal.Setup()
	// init http client
	cb := httpclient.InitCircuitBreaker(&cfg.HttpClient, cfg.HttpClient.Type)
	httpClient := httpclient.InitHttpClient(&cfg.HttpClient, cb)
	// init distributed lock
	rs := redsync.New(goredis.NewPool(redisClient))
	// init scheduler
	sched := &scheduler.Scheduler{Log: logger}
	schedulerClient := sched.InitClient(&cfg.Redis)
	schedulerInspector := sched.InitInspector(&cfg.Redis)

	ctx := context.Background()
	// init message stream
	amqp := messagestream.NewAmpq(&cfg.MessageStream)

	subscriber, err := amqp.NewSubscriber()
	if err != nil {
		logger.Ctx(ctx).Fatal("failed to create subscriber")
	}

	publisher, err := amqp.NewPublisher()
	if err != nil {
		logger.Ctx(ctx).Fatal("failed to create publisher")
	}

	ticketRepo := repositories.New(db, logger, httpClient, redisClient, schedulerClient, schedulerInspector, &cfg.UserService, &cfg.EventService)
	ticketUsecase := usecases.New(ticketRepo, logger, publisher, rs, &cfg.Booking)
	m := &middleware.Middleware{
		Log:  logger,
		Repo: ticketRepo,
	}

	ticketHandler := &handler.TicketHandler{
		Log:       logger,
		Validator: validator.New(),
		Usecase:   ticketUsecase,
		Publish:   publisher,
	}

	var messageRouters []*message.Router

	cancelBookingRouter, err := messagestream.NewRouter(publisher, "cancel_booking_poisoned", "cancel_booking_handler", "cancel_booking", subscriber, ticketHandler.ConsumeCancelBookingQueue)
	if err != nil {
		logger.Ctx(ctx).Fatal("failed to create cancel_booking router")
	}

	messageRouters = append(messageRouters, cancelBookingRouter)

	serverHttp := http.SetupHttpEngine()

	r := router.Initialize(serverHttp, ticketHandler, m)

	return r, messageRouters, sched, ticketHandler
}
