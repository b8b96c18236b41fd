package dbmigrate

import (
	"errors"

	"github.com/fdg312/curo/internal/config"
)

var ErrNoDatabaseURL = errors.New("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")

// Source is the connection chosen for DDL, with the env var it came from.
type Source struct {
	URL     string
	Name    string
	Warning string
}

// Select picks the URL for migrations: DIRECT > DATABASE_URL > POOLED.
// With requireDirect only DATABASE_URL_DIRECT is accepted.
func Select(cfg *config.Config, requireDirect bool) (Source, error) {
	if cfg.DatabaseURLDirect != "" {
		return Source{URL: cfg.DatabaseURLDirect, Name: "DATABASE_URL_DIRECT"}, nil
	}
	if requireDirect {
		return Source{}, errors.New("DATABASE_URL_DIRECT is required for startup migrations")
	}
	if cfg.DatabaseURLRaw != "" {
		return Source{URL: cfg.DatabaseURLRaw, Name: "DATABASE_URL"}, nil
	}
	if cfg.DatabaseURLPooled != "" {
		return Source{
			URL:     cfg.DatabaseURLPooled,
			Name:    "DATABASE_URL_POOLED",
			Warning: "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT",
		}, nil
	}
	return Source{}, ErrNoDatabaseURL
}
