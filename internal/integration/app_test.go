package integration_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozanyurt/cinebook/internal/app"
	"github.com/ozanyurt/cinebook/internal/domain"
	"github.com/ozanyurt/cinebook/internal/mailer"
	"github.com/ozanyurt/cinebook/internal/repository"
	appvalidator "github.com/ozanyurt/cinebook/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Sessions    *scs.SessionManager
	Mailer      *mailer.MockMailer
	Payments    *stubPaymentVerifier
	Holds       *repository.RedisHoldStore
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	userRepo := repository.NewPostgresUserRepository(db)
	screeningRepo := repository.NewPostgresScreeningRepository(db)
	seatRepo := repository.NewPostgresSeatRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	holdStore := repository.NewRedisHoldStore(redisClient)

	paymentVerifier := newStubPaymentVerifier()

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		userRepo,
		screeningRepo,
		seatRepo,
		bookingRepo,
		holdStore,
		paymentVerifier,
	)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Sessions:    sessionManager,
		Mailer:      mailer,
		Payments:    paymentVerifier,
		Holds:       holdStore,
	}, nil
}

// stubPaymentVerifier approves every payment with the configured amount, so
// flows can exercise both the happy path and the 402 branches without Stripe.
type stubPaymentVerifier struct {
	mu            sync.Mutex
	amount        decimal.Decimal
	succeeded     bool
	failureReason string
}

func newStubPaymentVerifier() *stubPaymentVerifier {
	return &stubPaymentVerifier{succeeded: true}
}

func (v *stubPaymentVerifier) VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return &domain.PaymentVerification{
		Reference:     reference,
		Amount:        v.amount,
		Currency:      "USD",
		Succeeded:     v.succeeded,
		FailureReason: v.failureReason,
	}, nil
}

func (v *stubPaymentVerifier) SetOutcome(amount decimal.Decimal, succeeded bool, failureReason string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.amount = amount
	v.succeeded = succeeded
	v.failureReason = failureReason
}
