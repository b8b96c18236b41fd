package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fdg312/curo/migrations"
)

var Commands = []string{"up", "down", "status"}

// Run applies command against the embedded migrations.
func Run(ctx context.Context, command string, dbURL string) error {
	if dbURL == "" {
		return ErrNoDatabaseURL
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("goose up failed: %w", err)
		}
		for _, r := range results {
			log.Printf("INFO migrate: applied %d %s (%s)", r.Source.Version, r.Source.Path, r.Duration)
		}
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("goose down failed: %w", err)
		}
		log.Printf("INFO migrate: rolled back %d %s", r.Source.Version, r.Source.Path)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status failed: %w", err)
		}
		for _, s := range statuses {
			log.Printf("INFO migrate: %d %s state=%s", s.Source.Version, s.Source.Path, s.State)
		}
	default:
		return fmt.Errorf("unsupported command %q (allowed: up, down, status)", command)
	}
	return nil
}
