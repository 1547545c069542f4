package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/events"
	v1 "github.com/gfdmit/web-forum/board-service/internal/handlers/http/v1"
	"github.com/gfdmit/web-forum/board-service/internal/httpserver"
	"github.com/gfdmit/web-forum/board-service/internal/lock"
	"github.com/gfdmit/web-forum/board-service/internal/media"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
	"github.com/gfdmit/web-forum/board-service/internal/repository/memory"
	"github.com/gfdmit/web-forum/board-service/internal/repository/postgres"
	"github.com/gfdmit/web-forum/board-service/internal/service"
	"github.com/gfdmit/web-forum/board-service/internal/workerpool"
)

func Run(conf config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		repo   repository.Repository
		locker lock.Locker
	)
	switch conf.Storage.Backend {
	case "postgres":
		pg, err := postgres.New(conf.Postgres, log)
		if err != nil {
			return fmt.Errorf("error when setting up repository: %v", err)
		}
		defer pg.Close()
		repo = pg
		locker = postgres.NewLocker(pg.DB())
	case "memory":
		log.Warn("[SETUP] using in-memory storage; data is lost on exit")
		mem := memory.New()
		if err := mem.SeedMembers(conf.Storage.SeedMembers); err != nil {
			return fmt.Errorf("error when seeding members: %v", err)
		}
		log.Infof("[SETUP] seeded %d members", len(conf.Storage.SeedMembers))
		repo = mem
		locker = lock.NewMemoryLocker()
	default:
		return fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}

	var resolver media.Resolver = media.Passthrough{}
	if conf.MinIO.Enabled {
		mr, err := media.NewMinIOResolver(conf.MinIO, log)
		if err != nil {
			return fmt.Errorf("error when setting up media resolver: %v", err)
		}
		resolver = mr
	}

	policy, err := workerpool.ParsePolicy(conf.Workers.Policy)
	if err != nil {
		return fmt.Errorf("error when setting up workers: %v", err)
	}
	pool := workerpool.New(conf.Workers.Size, conf.Workers.QueueSize, policy, conf.Workers.BlockTimeout, log)

	counter := service.NewCounterUpdater(repo, pool, lock.NewCoordinator(locker, log), lock.Options{
		TTL:         conf.Lock.TTL,
		MinWait:     conf.Lock.MinWait,
		Growth:      conf.Lock.Growth,
		MaxWait:     conf.Lock.MaxWait,
		MaxAttempts: conf.Lock.MaxAttempts,
	}, log)
	svc := service.New(repo, resolver, counter, service.NewCascadeDeleter(repo, log), log)
	listener := events.NewListener(svc, log)

	handler, err := v1.New(svc, listener, conf.Auth, log)
	if err != nil {
		return fmt.Errorf("error when setting up handler: %v", err)
	}

	httpserver := httpserver.New(conf.HTTPServer, handler, log)
	httpserver.OnShutdown(pool.Close)

	if conf.Events.Enabled && conf.Storage.Backend == "postgres" {
		subscriber, err := events.NewPQSubscriber(conf.Events, conf.Postgres.URL(), listener, log)
		if err != nil {
			return fmt.Errorf("error when setting up event subscriber: %v", err)
		}
		subCtx, stopSub := context.WithCancel(ctx)
		subDone := make(chan error, 1)
		go func() { subDone <- subscriber.Run(subCtx) }()

		httpserver.OnShutdown(func(p context.Context) error {
			stopSub()
			select {
			case err := <-subDone:
				return err
			case <-p.Done():
				return p.Err()
			}
		})
	}

	return httpserver.Run(ctx)
}
