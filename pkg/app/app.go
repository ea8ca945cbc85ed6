// Package app assembles groupcart: it opens the infrastructure named by the
// configuration, wires the services on top and exposes the HTTP handler,
// the server lifecycle and the CLI commands.
//
//	a, err := app.Boot(ctx, logger.L)
//	if err != nil { ... }
//	return a.Serve(ctx) // closes a when ctx ends
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/config"
	"github.com/shashiranjanraj/groupcart/pkg/audit"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/cache"
	"github.com/shashiranjanraj/groupcart/pkg/catalog"
	"github.com/shashiranjanraj/groupcart/pkg/database"
	"github.com/shashiranjanraj/groupcart/pkg/mail"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
	"github.com/shashiranjanraj/groupcart/pkg/storage"
	"github.com/shashiranjanraj/groupcart/pkg/workerpool"
)

// Infra is the set of external resources the services run on.
type Infra struct {
	DB      *gorm.DB
	Locker  cache.Locker
	Mailer  mail.Mailer
	Audit   audit.Recorder
	Storage *storage.Manager
	Tokens  *auth.Tokens

	// Redis is closed with the application when set.
	Redis *redis.Client
}

// Application holds the wired services.
type Application struct {
	Log     *slog.Logger
	Infra   Infra
	Catalog *catalog.Catalog
	Hub     *realtime.Hub
	Jobs    *workerpool.Pool

	Groups   *services.GroupService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Invoices *services.InvoiceService
	Orders   *services.OrderService
	Payments *services.PaymentService

	stopHub context.CancelFunc
}

// Boot connects everything the configuration asks for. Redis and Mongo are
// optional: without REDIS_ADDR checkout locks are in-process, without
// AUDIT_MONGO_URI delivery attempts are not recorded.
func Boot(ctx context.Context, log *slog.Logger) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	infra := Infra{Tokens: auth.FromConfig()}
	fail := func(err error) (*Application, error) {
		infra.close(context.Background(), log)
		return nil, err
	}

	db, err := database.Connect()
	if err != nil {
		return fail(err)
	}
	infra.DB = db

	if addr := config.RedisAddr(); addr != "" {
		rdb, err := cache.Connect(ctx, addr, config.RedisPassword())
		if err != nil {
			return fail(err)
		}
		infra.Redis = rdb
		infra.Locker = cache.NewRedisLocker(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, checkout locks are local to this process")
		infra.Locker = cache.NewMemoryLocker()
	}

	if infra.Mailer, err = mail.FromConfig(log); err != nil {
		return fail(err)
	}
	if infra.Storage, err = storage.FromConfig(ctx); err != nil {
		return fail(err)
	}

	if uri := config.AuditMongoURI(); uri != "" {
		rec, err := audit.NewMongoRecorder(ctx, uri, config.AuditMongoDB(), log)
		if err != nil {
			return fail(err)
		}
		infra.Audit = rec
	} else {
		infra.Audit = audit.Nop{}
	}

	a, err := New(infra, log)
	if err != nil {
		return fail(err)
	}
	return a, nil
}

// New wires the services onto infra. Missing optional parts get in-process
// defaults.
func New(infra Infra, log *slog.Logger) (*Application, error) {
	if infra.DB == nil {
		return nil, errors.New("app: database is required")
	}
	if infra.Locker == nil {
		infra.Locker = cache.NewMemoryLocker()
	}
	if infra.Audit == nil {
		infra.Audit = audit.Nop{}
	}
	if infra.Mailer == nil {
		infra.Mailer = mail.NewLogMailer(log)
	}
	if infra.Tokens == nil {
		infra.Tokens = auth.FromConfig()
	}

	taxRate, err := decimal.NewFromString(config.DefaultTaxRate())
	if err != nil {
		return nil, fmt.Errorf("app: DEFAULT_TAX_RATE: %w", err)
	}
	tipRate, err := decimal.NewFromString(config.DefaultTipRate())
	if err != nil {
		return nil, fmt.Errorf("app: DEFAULT_TIP_RATE: %w", err)
	}

	a := &Application{
		Log:     log,
		Infra:   infra,
		Catalog: catalog.Default(),
		Hub:     realtime.NewHub(log),
		Jobs:    workerpool.New(config.InvoiceWorkers(), log),
	}

	var hubCtx context.Context
	hubCtx, a.stopHub = context.WithCancel(context.Background())
	go a.Hub.Run(hubCtx)

	repos := repositories.New(infra.DB)
	tx := repositories.NewTxManager(infra.DB)

	var disk storage.Disk
	if infra.Storage != nil {
		disk = infra.Storage.Default()
	}

	a.Invoices = services.NewInvoiceService(repos, infra.Mailer, infra.Audit, a.Hub, log)
	if disk != nil {
		a.Invoices.ArchiveTo(disk)
	}
	a.Checkout = services.NewCheckoutService(repos, tx, infra.Locker, a.Hub, log).
		WithDefaultRates(taxRate, tipRate).
		WithLockTTL(config.CheckoutLockTTL())
	if config.InvoiceAutoSend() {
		a.Checkout.WithAutoSend(a.Jobs, a.Invoices)
	}
	a.Groups = services.NewGroupService(repos, tx, infra.Tokens, a.Catalog, a.Hub, log)
	a.Cart = services.NewCartService(repos, a.Catalog, a.Hub, log)
	a.Orders = services.NewOrderService(repos, tx, a.Hub, log)
	a.Payments = services.NewPaymentService(repos, disk, a.Hub, log)
	return a, nil
}

// Close drains background jobs, disconnects realtime clients and releases
// the infrastructure.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if err := a.Jobs.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("jobs: %w", err))
	}
	a.stopHub()
	if err := a.Infra.close(ctx, a.Log); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (in Infra) close(_ context.Context, log *slog.Logger) error {
	var errs []error
	if in.Audit != nil {
		if err := in.Audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit: %w", err))
		}
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if in.DB != nil {
		if err := database.Close(in.DB); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Error("app: close", "error", err)
		return err
	}
	return nil
}
