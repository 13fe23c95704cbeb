package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/connection-monitor/internal/auth"
	"github.com/iliyamo/connection-monitor/internal/config"
	"github.com/iliyamo/connection-monitor/internal/database"
	"github.com/iliyamo/connection-monitor/internal/handler"
	"github.com/iliyamo/connection-monitor/internal/metrics"
	"github.com/iliyamo/connection-monitor/internal/middleware"
	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/queue"
	"github.com/iliyamo/connection-monitor/internal/repository"
	"github.com/iliyamo/connection-monitor/internal/router"
	"github.com/iliyamo/connection-monitor/internal/service"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// userDirectory is what both user repos offer to startup and auth.
type userDirectory interface {
	auth.UserFinder
	Create(ctx context.Context, email, password string, role model.Role, cost int) (repository.UserRecord, error)
}

// backend is the storage selected by STORAGE_DRIVER.
type backend struct {
	users     userDirectory
	sessions  auth.SessionStore
	snapshots repository.SnapshotRepo
	close     func()
}

func openBackend(ctx context.Context, cfg config.Config, lg *log.Logger) (backend, error) {
	switch cfg.StorageDriver {
	case config.StorageMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return backend{}, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return backend{}, err
		}
		lg.Infof("storage: mysql %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
		return backend{
			users:     repository.NewUserRepo(db),
			sessions:  repository.NewSessionRepo(db),
			snapshots: repository.NewMySQLSnapshotRepo(db),
			close:     func() { db.Close() },
		}, nil
	case config.StorageBolt:
		db, err := database.OpenBolt(cfg.BoltPath)
		if err != nil {
			return backend{}, err
		}
		lg.Infof("storage: bolt %s", cfg.BoltPath)
		return backend{
			users:     repository.NewMemoryUsers(),
			sessions:  repository.NewMemorySessions(),
			snapshots: repository.NewBoltSnapshotRepo(db),
			close:     func() { db.Close() },
		}, nil
	default:
		lg.Info("storage: memory")
		return backend{
			users:     repository.NewMemoryUsers(),
			sessions:  repository.NewMemorySessions(),
			snapshots: &repository.MemorySnapshotRepo{},
			close:     func() {},
		}, nil
	}
}

// seedDataset loads the saved dataset, falling back to the example row when
// nothing was saved yet.
func seedDataset(ctx context.Context, cfg config.Config, repo repository.SnapshotRepo) (model.Dataset, error) {
	ds := model.Dataset{}
	if repo != nil {
		loaded, err := repo.LoadAll(ctx)
		if err != nil {
			return ds, err
		}
		ds = loaded
	}
	if len(ds.Connections) == 0 && len(ds.Addresses) == 0 && cfg.SeedExample {
		ds = model.ExampleDataset(time.Now().UTC())
	}
	return ds, nil
}

func main() {
	cfg := config.Load() // Load environment config

	lg := log.New("connmon")
	level := log.DEBUG
	if cfg.Env == "prod" {
		level = log.INFO
	}
	lg.SetLevel(level)
	// Background workers log through gommon's package-level logger.
	log.SetPrefix("connmon")
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, lg)
	if err != nil {
		lg.Fatalf("storage: %v", err)
	}
	defer be.close()

	if _, err := be.users.Create(ctx, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost); err != nil &&
		!errors.Is(err, repository.ErrEmailExists) {
		lg.Fatalf("bootstrap admin: %v", err)
	}

	seed, err := seedDataset(ctx, cfg, be.snapshots)
	if err != nil {
		lg.Fatalf("load snapshot: %v", err)
	}

	authSvc := auth.NewService(be.users, be.sessions, cfg.JWTSecret, cfg.AccessTTLMin)
	st := store.New(seed, store.WithAuthenticator(authSvc))
	lg.Infof("store ready: %d connections, %d addresses", len(seed.Connections), len(seed.Addresses))

	// Store listeners.
	var workers sync.WaitGroup
	st.Subscribe(store.ListenerFunc(func(ch store.Change, snap store.Snapshot) {
		lg.Debugf("store: %s id=%s connections=%d", ch.Kind, ch.ID, len(snap.Connections))
	}))

	collector, err := metrics.NewStoreCollector(prometheus.DefaultRegisterer)
	if err != nil {
		lg.Fatalf("metrics: %v", err)
	}
	collector.Observe(st.Snapshot())
	st.Subscribe(collector)

	if be.snapshots != nil {
		saver := service.NewSnapshotSaver(be.snapshots)
		st.Subscribe(saver)
		workers.Add(1)
		go func() {
			defer workers.Done()
			saver.Run(ctx)
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		lg.Warn("redis unavailable: caching and rate limiting disabled")
	} else {
		defer rdb.Close()
		st.Subscribe(service.NewCacheInvalidator(rdb, cacheCfg.GenerationKey))
	}

	if cfg.AMQPEnabled {
		pub := service.NewEventPublisher(cfg.AMQPURL, 256)
		st.Subscribe(pub)
		workers.Add(2)
		go func() {
			defer workers.Done()
			pub.Run(ctx)
		}()
		go func() {
			defer workers.Done()
			if err := queue.StartChangeConsumer(ctx, cfg.AMQPURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				lg.Errorf("change consumer: %v", err)
			}
		}()
	}

	// HTTP.
	e := echo.New()
	e.HideBanner = true
	e.Logger = lg
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(st),
		Connections: handler.NewConnectionHandler(st),
		Addresses:   handler.NewAddressHandler(st),
		Attachments: handler.NewAttachmentHandler(st),
		UI:          handler.NewUIStateHandler(st),
	}, router.Middleware{
		Authorizer: authSvc,
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Metrics:    promhttp.Handler(),
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Infof("listening on %s (env=%s, storage=%s)", addr, cfg.Env, cfg.StorageDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("shutdown error: %v", err)
	}
	workers.Wait()
}
