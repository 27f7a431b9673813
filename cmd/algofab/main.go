// Command algofab runs the HTTP/WS job-execution server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/rakunlabs/into"
	"github.com/rakunlabs/logi"

	"github.com/rakunlabs/algofab/algorithms"
	"github.com/rakunlabs/algofab/internal/config"
	"github.com/rakunlabs/algofab/internal/server"
	"github.com/rakunlabs/algofab/pkg/algorithm"
	"github.com/rakunlabs/algofab/pkg/auth"
	"github.com/rakunlabs/algofab/pkg/cache"
	"github.com/rakunlabs/algofab/pkg/iotype"
	"github.com/rakunlabs/algofab/pkg/queue"
)

func main() {
	into.Init(run,
		into.WithLogger(logi.InitializeLog(logi.WithCaller(false))),
		into.WithMsgf("algofab server stopped: %v"),
	)
}

func run(ctx context.Context) error {
	configPath := flag.String("config", "", "path to the algofab config file")
	flag.Parse()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ioReg := iotype.NewRegistry()
	algoReg := algorithm.NewRegistry()

	if err := algorithms.RegisterSum(algoReg, ioReg); err != nil {
		return fmt.Errorf("register builtin algorithms: %w", err)
	}
	if err := algorithms.RegisterEcho(algoReg, ioReg); err != nil {
		return fmt.Errorf("register builtin algorithms: %w", err)
	}
	if cfg.DescriptorDir != "" {
		if err := loadDescriptors(cfg.DescriptorDir, algoReg, ioReg); err != nil {
			return fmt.Errorf("load descriptor algorithms: %w", err)
		}
	}

	cacheBackend, authBackend, err := buildStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build stores: %w", err)
	}

	hashAlg := cache.HashAlg(cfg.Cache.HashAlgorithm)
	if hashAlg == "" {
		hashAlg = cache.DefaultHashAlg
	}

	lanes := make([]queue.LaneConfig, 0, len(cfg.Lanes))
	for _, l := range cfg.Lanes {
		lanes = append(lanes, queue.LaneConfig{Name: l.Name, Resources: l.Resources})
	}

	executorHash := hashAlg
	q, err := queue.New(ctx, lanes, server.NewExecutor(algoReg, cacheBackend, &executorHash))
	if err != nil {
		return fmt.Errorf("build task queue: %w", err)
	}

	srv, err := server.New(ctx, cfg, server.Deps{
		IOTypes:       ioReg,
		Algorithms:    algoReg,
		Queue:         q,
		Cache:         cacheBackend,
		CacheHash:     &executorHash,
		Authenticator: authBackend,
		Audit:         server.NewAuditLog(1000),
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	return srv.ListenAndServe(ctx)
}

func loadDescriptors(dir string, algoReg *algorithm.Registry, ioReg *iotype.Registry) error {
	entries, err := readDescriptorFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range entries {
		if err := algorithm.LoadDescriptorFile(path, algoReg, ioReg); err != nil {
			return err
		}
	}
	return nil
}

func buildStores(ctx context.Context, cfg config.Config) (cache.Cache, auth.Authenticator, error) {
	switch {
	case cfg.Store.Postgres != nil:
		db, err := sql.Open("pgx", cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return cache.NewSQLCache(db, "postgres"), auth.NewSQLAuthenticator(db, "postgres"), nil

	case cfg.Store.SQLite != nil:
		db, err := sql.Open("sqlite", cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return cache.NewSQLCache(db, "sqlite3"), auth.NewSQLAuthenticator(db, "sqlite3"), nil

	default:
		authBackend := auth.Authenticator(auth.NewMemoryAuthenticator())
		if cfg.Auth.File != "" {
			fileAuth, err := auth.NewFileAuthenticator(cfg.Auth.File)
			if err != nil {
				return nil, nil, fmt.Errorf("open credential file: %w", err)
			}
			authBackend = fileAuth
		}
		return cache.NewMemoryCache(), authBackend, nil
	}
}
