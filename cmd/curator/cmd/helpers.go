package cmd

import (
	"context"

	"github.com/spf13/viper"

	"github.com/townscout/curator/internal/config"
	"github.com/townscout/curator/internal/research/anthropic"
	"github.com/townscout/curator/internal/research/google"
	"github.com/townscout/curator/internal/store/postgres"
	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/suggest"
)

// buildCatalog constructs the field catalog, overlaying the optional
// override file.
func buildCatalog() (*fields.Catalog, error) {
	var opts []fields.Option
	if path := config.GetString("catalog"); path != "" {
		opts = append(opts, fields.WithFile(path))
	}
	return fields.New(opts...)
}

// openStore connects to the configured Postgres record store. The
// returned closer shuts the connection pool down.
func openStore(ctx context.Context) (*postgres.Store, func(), error) {
	url := config.GetString("db_url")
	if url == "" {
		url = config.GetString("DATABASE_URL")
	}
	if url == "" {
		return nil, nil, errors.NewConfigError("store", "no database URL configured (set --db-url or DATABASE_URL)", nil)
	}

	db, err := postgres.Open(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	recordStore, err := postgres.New(db, viper.GetString("table"))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return recordStore, func() { _ = db.Close() }, nil
}

// buildResearcher constructs the configured research collaborator.
func buildResearcher(ctx context.Context, catalog *fields.Catalog) (suggest.Researcher, error) {
	name := viper.GetString("provider")
	key, err := config.ResearchAPIKey(name)
	if err != nil {
		return nil, err
	}

	switch name {
	case "google", "gemini":
		return google.New(ctx, catalog, key)
	default:
		return anthropic.New(catalog, key)
	}
}
