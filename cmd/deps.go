package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/groupements-cli/internal/cache"
	"github.com/sells-group/groupements-cli/internal/division"
	"github.com/sells-group/groupements-cli/internal/fetcher"
	"github.com/sells-group/groupements-cli/internal/sink"
)

func initCache(ctx context.Context) (cache.Store, error) {
	var (
		st  cache.Store
		err error
	)
	switch cfg.Cache.Driver {
	case "sqlite":
		st, err = cache.NewSQLite(cfg.Cache.Path)
	case "postgres":
		st, err = cache.NewPostgres(ctx, cfg.Cache.DatabaseURL)
	case "memory":
		st = cache.NewMemory()
	default:
		return nil, eris.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func initFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:   cfg.Banatic.UserAgent,
		Timeout:     time.Duration(cfg.Banatic.TimeoutSecs) * time.Second,
		DefaultRate: rate.Limit(cfg.Banatic.RequestsPerSecond),
	})
}

func initSink(ctx context.Context) (sink.Sink, error) {
	if cfg.Output.S3Bucket == "" {
		return sink.NewFile(cfg.Output.Path), nil
	}
	return sink.NewS3(ctx, sink.S3Config{
		Bucket:    cfg.Output.S3Bucket,
		Key:       cfg.Output.S3Key,
		Region:    cfg.Output.S3Region,
		Endpoint:  cfg.Output.S3Endpoint,
		PathStyle: cfg.Output.S3PathStyle,
	})
}

// loadDivisions returns the configured division list narrowed to divisions.only.
func loadDivisions() ([]division.Division, error) {
	divs, err := division.Load(cfg.Divisions.File)
	if err != nil {
		return nil, err
	}
	return division.Filter(divs, cfg.Divisions.Only)
}
