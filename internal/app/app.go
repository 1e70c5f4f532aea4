package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargeflow/internal/api"
	"chargeflow/internal/authsession"
	"chargeflow/internal/backend"
	"chargeflow/internal/booking"
	"chargeflow/internal/charging"
	"chargeflow/internal/config"
	"chargeflow/internal/handoff"
	"chargeflow/internal/hold"
	httpserver "chargeflow/internal/http"
	"chargeflow/internal/http/handlers"
	"chargeflow/internal/http/middleware"
	"chargeflow/internal/invoice"
	"chargeflow/internal/payment"
	"chargeflow/internal/repository"
	"chargeflow/internal/ws"
	libdb "chargeflow/libs/db"
	libredis "chargeflow/libs/redis"
)

// App wires the gateway dependency graph.
type App struct {
	server      *httpserver.Server
	charging    *charging.Service
	sessions    *authsession.Store
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	apiClient := api.NewClient(
		cfg.Backend.BaseURL,
		&http.Client{Timeout: cfg.Backend.Timeout},
		middleware.TokenFromContext,
		logger,
	)

	authClient := backend.NewAuth(apiClient)
	catalog := backend.NewCatalog(apiClient)
	bookings := backend.NewBookings(apiClient)
	sessionsClient := backend.NewSessions(apiClient)
	payments := backend.NewPayments(apiClient)
	invoices := backend.NewInvoices(apiClient)
	subscriptions := backend.NewSubscriptions(apiClient)
	notifications := backend.NewNotifications(apiClient)

	sessionStore := authsession.NewStore(redisClient, cfg.HandoffTTL(), logger)
	handoffStore := handoff.NewStore(redisClient, cfg.HandoffTTL())

	holdRepo := repository.NewHoldRepository(sqlDB)
	invoiceRepo := repository.NewInvoiceRepository(sqlDB)

	bookingFlow := booking.NewService(catalog, bookings, logger)
	paymentFlow := payment.NewService(payments, handoffStore, nil, logger)
	holdManager := hold.NewManager(handoffStore, holdRepo, nil, logger)
	chargingService := charging.NewService(sessionsClient, charging.Defaults{
		PenaltyPerMin:   cfg.Charging.PenaltyPerMin,
		GraceSeconds:    cfg.Charging.GraceSeconds,
		SpeedMultiplier: cfg.Charging.SpeedMultiplier,
		PollInterval:    cfg.Charging.PollInterval,
	}, nil, logger)
	assembler := invoice.NewAssembler(invoices, invoiceRepo, logger)

	authHandler := handlers.NewAuthHandler(authClient, sessionStore, logger)
	bookingHandler := handlers.NewBookingHandler(bookingFlow, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentFlow, logger)
	holdHandler := handlers.NewHoldHandler(holdManager, chargingService, nil, logger)
	chargingHandler := handlers.NewChargingHandler(chargingService, assembler, holdManager, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptions, logger)
	notificationHandler := handlers.NewNotificationHandler(notifications, logger)
	stream := ws.NewStream(chargingService, cfg.Charging.StreamInterval, logger)

	routes := httpserver.Routes{
		Health: handlers.NewHealthHandler("chargeflow"),

		Login:          authHandler.Login,
		Logout:         authHandler.Logout,
		ChangePassword: authHandler.ChangePassword,
		ForgotPassword: authHandler.ForgotPassword,
		ResetPassword:  authHandler.ResetPassword,

		Stations: bookingHandler.Stations,
		Chargers: bookingHandler.Chargers,
		Ports:    bookingHandler.Ports,
		Reserve:  bookingHandler.Reserve,

		BeginBookingPayment:      paymentHandler.BeginBooking,
		BeginInvoicePayment:      paymentHandler.BeginInvoice,
		BeginComboPayment:        paymentHandler.BeginCombo,
		BeginSubscriptionRenewal: paymentHandler.BeginSubscriptionRenewal,
		PaymentReturn:            paymentHandler.Return,

		HoldEnter:  holdHandler.Enter,
		HoldRedeem: holdHandler.Redeem,

		SessionSnapshot: chargingHandler.Snapshot,
		SessionStop:     chargingHandler.Stop,
		SessionInvoice:  chargingHandler.RetryInvoice,
		SessionStream:   stream.ServeSession,
		GuestStart:      chargingHandler.GuestStart,

		Subscriptions:      subscriptionHandler.List,
		Subscription:       subscriptionHandler.Get,
		SubscriptionUpdate: subscriptionHandler.Update,

		NotifyCustomer:  notificationHandler.SendToCustomer,
		NotifyCompany:   notificationHandler.SendToCompany,
		NotifyBroadcast: notificationHandler.Broadcast,
	}

	router := httpserver.NewRouter(routes, cfg.Auth.JWTSecret)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		charging:    chargingService,
		sessions:    sessionStore,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server plus the background refresh loop and the
// session-change fanout. Both stop with ctx.
func (a *App) Run(ctx context.Context) error {
	go a.charging.Run(ctx)
	go a.watchSessions(ctx)
	return a.server.Run(ctx)
}

// watchSessions logs cross-instance session changes. The subscription is
// what keeps multiple gateway replicas consistent when one logs a browser
// out.
func (a *App) watchSessions(ctx context.Context) {
	for change := range a.sessions.Subscribe(ctx) {
		a.logger.Debug("auth session changed", zap.String("session_id", change.SessionID))
	}
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
