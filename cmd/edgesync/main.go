// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains edgesync main function to start the edgesync service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/absmach/edgesync/api"
	"github.com/absmach/edgesync/attributes"
	attrpg "github.com/absmach/edgesync/attributes/postgres"
	"github.com/absmach/edgesync/cluster"
	"github.com/absmach/edgesync/dispatch"
	"github.com/absmach/edgesync/edge/mqtt"
	entitiespg "github.com/absmach/edgesync/entities/postgres"
	"github.com/absmach/edgesync/internal"
	"github.com/absmach/edgesync/internal/clients/otlp"
	pgclient "github.com/absmach/edgesync/internal/clients/postgres"
	redisclient "github.com/absmach/edgesync/internal/clients/redis"
	"github.com/absmach/edgesync/internal/env"
	"github.com/absmach/edgesync/internal/server"
	httpserver "github.com/absmach/edgesync/internal/server/http"
	mglog "github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/ticker"
	"github.com/absmach/edgesync/pkg/uuid"
	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/queue/brokers"
	queuetracing "github.com/absmach/edgesync/queue/tracing"
	"github.com/absmach/edgesync/routing"
	"github.com/absmach/edgesync/routing/cache"
	"github.com/absmach/edgesync/telemetry"
	telemetryapi "github.com/absmach/edgesync/telemetry/api"
	"github.com/absmach/edgesync/telemetry/tracing"
	"github.com/absmach/edgesync/uplink"
	uplinkpg "github.com/absmach/edgesync/uplink/postgres"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	svcName         = "edgesync"
	envPrefixDB     = "MG_EDGESYNC_DB_"
	envPrefixHTTP   = "MG_EDGESYNC_HTTP_"
	envPrefixQueue  = "MG_EDGESYNC_QUEUE_"
	envPrefixCache  = "MG_EDGESYNC_CACHE_"
	defSvcHTTPPort  = "9030"
	defEdgeClientID = "edgesync"
)

type config struct {
	LogLevel       string        `env:"MG_EDGESYNC_LOG_LEVEL"        envDefault:"info"`
	InstanceID     string        `env:"MG_EDGESYNC_INSTANCE_ID"      envDefault:""`
	JaegerURL      string        `env:"MG_JAEGER_URL"                envDefault:"localhost:4318"`
	TraceRatio     float64       `env:"MG_JAEGER_TRACE_RATIO"        envDefault:"1.0"`
	RedisURL       string        `env:"MG_EDGESYNC_REDIS_URL"        envDefault:"redis://localhost:6379/0"`
	EdgeURL        string        `env:"MG_EDGESYNC_EDGE_URL"         envDefault:"tcp://localhost:1883"`
	EdgeConfigPath string        `env:"MG_EDGESYNC_EDGE_CONFIG"      envDefault:""`
	EdgeWait       time.Duration `env:"MG_EDGESYNC_EDGE_WAIT"        envDefault:"1m"`
	ForwardPeriod  time.Duration `env:"MG_EDGESYNC_FORWARD_INTERVAL" envDefault:"5s"`
	ForwardBatch   uint64        `env:"MG_EDGESYNC_FORWARD_BATCH"    envDefault:"100"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := mglog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}

	var exitCode int
	defer mglog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	db, err := pgclient.Setup(envPrefixDB, entitiespg.Migration(), attrpg.Migration(), uplinkpg.Migration())
	if err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}
	defer db.Close()

	redisClient, err := redisclient.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to cache: %s", err))
		exitCode = 1
		return
	}
	defer redisClient.Close()

	tp, err := otlp.NewProvider(ctx, svcName, cfg.JaegerURL, cfg.InstanceID, cfg.TraceRatio)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to init tracer provider: %s", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("error shutting down tracer provider: %s", err))
		}
	}()
	tracer := tp.Tracer(svcName)

	queueCfg := queue.Config{}
	if err := env.Parse(&queueCfg, env.Options{Prefix: envPrefixQueue}); err != nil {
		logger.Error(fmt.Sprintf("failed to load queue configuration : %s", err))
		exitCode = 1
		return
	}
	producer, err := brokers.NewProducer(ctx, queueCfg, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to queue: %s", err))
		exitCode = 1
		return
	}
	defer producer.Close()
	producer = queuetracing.New(tracer, producer)

	cacheCfg := cache.Config{}
	if err := env.Parse(&cacheCfg, env.Options{Prefix: envPrefixCache}); err != nil {
		logger.Error(fmt.Sprintf("failed to load cache configuration : %s", err))
		exitCode = 1
		return
	}

	entityRepo := entitiespg.New(db)
	store := attrpg.New(db)
	cs := cluster.New(queue.NewPartitionService(queueCfg), producer, logger)
	svc := newService(entityRepo, redisClient, cacheCfg, store, cs, tracer, logger)

	edgeCfg := mqtt.DefaultConfig()
	if cfg.EdgeConfigPath != "" {
		if edgeCfg, err = mqtt.LoadConfig(cfg.EdgeConfigPath); err != nil {
			logger.Error(fmt.Sprintf("failed to load edge link configuration: %s", err))
			exitCode = 1
			return
		}
	}
	var link mqtt.Link
	connect := func() error {
		link, err = mqtt.NewLink(cfg.EdgeURL, defEdgeClientID+"-"+cfg.InstanceID, edgeCfg, logger)
		return err
	}
	notify := func(e error, next time.Duration) {
		logger.Info(fmt.Sprintf("Edge broker not ready: %s, next try in %s", e, next))
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.EdgeWait
	if err := backoff.RetryNotify(connect, backoff.WithContext(bo, ctx), notify); err != nil {
		logger.Error(fmt.Sprintf("failed to connect to edge broker: %s", err))
		exitCode = 1
		return
	}
	defer link.Close()
	if err := link.Subscribe(ctx, svc); err != nil {
		logger.Error(fmt.Sprintf("failed to subscribe to edge downlink: %s", err))
		exitCode = 1
		return
	}
	logger.Info(fmt.Sprintf("Subscribed to edge downlink %s", edgeCfg.DownlinkTopic()))

	events := uplinkpg.New(db)
	forwarder := uplink.NewForwarder(events, uplink.NewEncoder(uplink.DefaultIDs(), logger), link, cfg.ForwardBatch, logger)

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.Parse(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err))
		exitCode = 1
		return
	}
	hs := httpserver.New(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, events, uuid.New(), svcName, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return uplink.Run(ctx, forwarder, ticker.NewTicker(cfg.ForwardPeriod), logger)
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
	}
}

func newService(repo *entitiespg.Repository, client *redis.Client, cacheCfg cache.Config, store attributes.Store, cs cluster.Service, tracer trace.Tracer, logger mglog.Logger) telemetry.Service {
	resolver := routing.NewResolver(repo, logger)
	router := routing.NewProfileRoutes(cache.NewCache(client, repo, cacheCfg), logger)
	coordinator := dispatch.New(cs, logger)

	svc := telemetry.NewService(resolver, router, uuid.New(), coordinator, store, cs, logger)
	svc = telemetryapi.LoggingMiddleware(svc, logger)
	counter, latency := internal.MakeMetrics(svcName, "telemetry")
	svc = telemetryapi.MetricsMiddleware(svc, counter, latency)
	svc = tracing.New(svc, tracer)

	return svc
}
