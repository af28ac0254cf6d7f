// Command seed-db runs migrations and loads the default service catalog.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dailywork/dailywork-server/internal/postgres"
)

type seedService struct {
	id          string
	name        string
	description string
	icon        string
	basePrice   decimal.Decimal
}

// defaultServices mirrors the catalog the mobile app ships with.
var defaultServices = []seedService{
	{"1", "Cuci Baju", "Layanan cuci baju profesional dengan deterjen berkualitas", "👕", decimal.NewFromInt(15000)},
	{"2", "Cuci Baju + Setrika", "Paket lengkap cuci baju dan setrika rapi", "👔", decimal.NewFromInt(25000)},
	{"3", "Beres-Beres Rumah", "Jasa bersih-bersih rumah menyeluruh", "🏠", decimal.NewFromInt(100000)},
	{"4", "Potong Rambut", "Layanan potong rambut profesional di rumah", "✂️", decimal.NewFromInt(50000)},
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedServices(ctx, pool)
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range defaultServices {
		// Existing rows keep any admin edits.
		_, err := pool.Exec(ctx, `INSERT INTO services (id, name, description, icon, base_price, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (id) DO NOTHING`,
			s.id, s.name, s.description, s.icon, s.basePrice,
		)
		if err != nil {
			return errors.Wrapf(err, "seed service %q", s.name)
		}
	}

	slog.Info("seeded services", slog.Int("count", len(defaultServices)))
	return nil
}
