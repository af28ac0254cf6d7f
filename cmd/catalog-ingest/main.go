// Command catalog-ingest bulk-imports service catalog dumps.
//
// Each input file is gzipped newline-delimited JSON, one service per line.
// Files are parsed concurrently; a shared bloom filter drops IDs that were
// already ingested in this run. False positives only skip a redundant write,
// never corrupt data, because the insert is an upsert either way.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dailywork/dailywork-server/internal/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	batchSize     = 1_000
	progressEvery = 100_000
)

type serviceRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	IsActive    *bool           `json:"isActive"`
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
	if flag.NArg() == 0 {
		slog.Error("usage: catalog-ingest [flags] catalog-dump.gz ...")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	var (
		mu   sync.Mutex
		seen = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	)
	records := make(chan serviceRecord, batchSize)

	g, ctx := errgroup.WithContext(ctx)

	// Readers: one per input file.
	readers, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		readers.Go(func() error {
			return readFile(ctx, file, func(rec serviceRecord) bool {
				mu.Lock()
				dup := seen.TestOrAddString(rec.ID)
				mu.Unlock()
				if dup {
					return false
				}
				select {
				case records <- rec:
					return true
				case <-ctx.Done():
					return false
				}
			})
		})
	}
	g.Go(func() error {
		defer close(records)
		return readers.Wait()
	})

	// Single writer batching upserts.
	g.Go(func() error {
		return writeBatches(ctx, pool, records)
	})

	return g.Wait()
}

func readFile(ctx context.Context, path string, emit func(serviceRecord) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader %s", path)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	var lines int
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec serviceRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			slog.Warn("skipping malformed line", slog.String("file", path), slog.String("error", err.Error()))
			continue
		}
		if rec.ID == "" || rec.Name == "" {
			continue
		}
		emit(rec)

		if lines++; lines%progressEvery == 0 {
			slog.Info("progress", slog.String("file", path), slog.Int("lines", lines))
		}
	}
	return errors.Wrapf(scanner.Err(), "scan %s", path)
}

const upsertServiceSQL = `INSERT INTO services (id, name, description, icon, base_price, is_active)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		icon = EXCLUDED.icon,
		base_price = EXCLUDED.base_price,
		is_active = EXCLUDED.is_active`

func writeBatches(ctx context.Context, pool *pgxpool.Pool, records <-chan serviceRecord) error {
	var (
		batch pgx.Batch
		total int
	)

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := pool.SendBatch(ctx, &batch).Close(); err != nil {
			return errors.Wrap(err, "send batch")
		}
		total += batch.Len()
		batch = pgx.Batch{}
		return nil
	}

	for rec := range records {
		active := true
		if rec.IsActive != nil {
			active = *rec.IsActive
		}
		batch.Queue(upsertServiceSQL, rec.ID, rec.Name, rec.Description, rec.Icon, rec.BasePrice, active)

		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("services upserted", slog.Int("count", total))
	return nil
}
