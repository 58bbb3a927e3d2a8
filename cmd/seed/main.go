package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/db"
	"github.com/hackgods/clinic-appointments/internal/logging"
)

const (
	doctorCount  = 100
	patientCount = 9000
	batchSize    = 500
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var services = []struct {
	name     string
	minutes  int
	priceUSD float64
}{
	{"General consultation", 20, 60},
	{"Follow-up visit", 15, 40},
	{"Annual physical", 45, 150},
	{"Vaccination", 10, 25},
	{"Blood panel", 15, 80},
	{"ECG", 30, 120},
	{"Skin screening", 30, 95},
	{"Eye exam", 30, 90},
}

// row returns the INSERT statement and arguments for one generated row.
type row func() (string, []any)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	if err := seedServices(context.Background(), pool, logger); err != nil {
		logger.Fatal("seed services", zap.Error(err))
	}
	if err := seed(context.Background(), pool, logger, "doctors", doctorCount, doctorRow(faker)); err != nil {
		logger.Fatal("seed doctors", zap.Error(err))
	}
	if err := seed(context.Background(), pool, logger, "patients", patientCount, patientRow(faker)); err != nil {
		logger.Fatal("seed patients", zap.Error(err))
	}

	logger.Info("seed complete")
}

func doctorRow(faker *gofakeit.Faker) row {
	return func() (string, []any) {
		spec := specialties[faker.Number(0, len(specialties)-1)]
		return `
			INSERT INTO doctors (name, specialty, created_at, updated_at)
			VALUES ($1, $2, now(), now())
		`, []any{"Dr. " + faker.Name(), spec}
	}
}

func patientRow(faker *gofakeit.Faker) row {
	return func() (string, []any) {
		dob := faker.DateRange(time.Now().AddDate(-90, 0, 0), time.Now().AddDate(-1, 0, 0))
		return `
			INSERT INTO patients (name, email, phone, date_of_birth, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, []any{faker.Name(), faker.Email(), faker.Phone(), dob}
	}
}

func seedServices(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	i := 0
	next := func() (string, []any) {
		s := services[i]
		i++
		return `
			INSERT INTO services (name, duration_minutes, price, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, []any{s.name, s.minutes, s.priceUSD}
	}
	return seed(ctx, pool, logger, "services", len(services), next)
}

// seed inserts count generated rows, committing every batchSize rows.
func seed(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger, table string, count int, next row) error {
	logger.Info("seeding", zap.String("table", table), zap.Int("count", count))

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin %s batch: %w", table, err)
		}

		for i := offset; i < end; i++ {
			sql, args := next()
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s batch: %w", table, err)
		}

		logger.Info("seeded batch", zap.String("table", table), zap.Int("done", end), zap.Int("total", count))
	}

	return nil
}
