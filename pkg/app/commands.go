package app

// Implementations behind the groupcart CLI sub-commands.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/routes"
	"github.com/shashiranjanraj/groupcart/config"
	"github.com/shashiranjanraj/groupcart/database/seeders"
	"github.com/shashiranjanraj/groupcart/pkg/database"
	"github.com/shashiranjanraj/groupcart/pkg/migration"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

// withDB loads config, opens the database for fn and closes it afterwards.
func withDB(fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

// Migrate runs all pending migrations.
func Migrate(out io.Writer, log *slog.Logger) error {
	return withDB(func(db *gorm.DB) error {
		return migration.New(db, out, log).Run()
	})
}

// Rollback reverses the last migration batch.
func Rollback(out io.Writer, log *slog.Logger) error {
	return withDB(func(db *gorm.DB) error {
		return migration.New(db, out, log).Rollback()
	})
}

// MigrationStatus prints every migration and its batch.
func MigrationStatus(out io.Writer, log *slog.Logger) error {
	return withDB(func(db *gorm.DB) error {
		return migration.New(db, out, log).Status()
	})
}

// Seed runs every registered seeder.
func Seed(ctx context.Context, out io.Writer) error {
	return withDB(func(db *gorm.DB) error {
		return seeders.RunAll(ctx, db, out)
	})
}

// RouteList prints the route table. Nothing is connected.
func RouteList(out io.Writer) error {
	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{}, nil)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range r.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

// SendInvoices dispatches the invoices of one order from the command line.
// Participants already served are skipped.
func SendInvoices(ctx context.Context, orderID string, out io.Writer, log *slog.Logger) (err error) {
	a, err := Boot(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if cerr := a.Close(closeCtx); err == nil {
			err = cerr
		}
	}()

	detail, err := a.Orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	res, err := a.Invoices.Dispatch(ctx, orderID, detail.Order.GroupID)
	fmt.Fprintf(out, "sent %d, skipped %d\n", res.SentCount, res.SkippedCount)
	return err
}
