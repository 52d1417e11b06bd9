package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	accountservice "prospace/internal/account/service"
	accountstore "prospace/internal/account/store"
	"prospace/internal/audit"
	docservice "prospace/internal/document/service"
	docstore "prospace/internal/document/store"
	"prospace/internal/jwttoken"
	"prospace/internal/platform/config"
	"prospace/internal/platform/httpserver"
	"prospace/internal/platform/logger"
	"prospace/internal/platform/metrics"
	platformredis "prospace/internal/platform/redis"
	reghandler "prospace/internal/registration/handler"
	regmetrics "prospace/internal/registration/metrics"
	regservice "prospace/internal/registration/service"
	regstore "prospace/internal/registration/store"
	taxhandler "prospace/internal/taxonomy/handler"
	taxservice "prospace/internal/taxonomy/service"
	taxstore "prospace/internal/taxonomy/store"
	httptransport "prospace/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Draft, account and document stores: Postgres when configured, memory
	// otherwise (local development and tests).
	var (
		draftStore   regservice.DraftStore
		accountStore accountservice.AccountStore
		docStore     docservice.DocumentStore
	)
	health := map[string]httptransport.HealthChecker{}
	if cfg.Postgres.URL != "" {
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("failed to open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err.Error())
			os.Exit(1)
		}
		draftStore = regstore.NewPostgres(db)
		accountStore = accountstore.NewPostgres(db)
		docStore = docstore.NewPostgres(db)
		health["postgres"] = db.Ping
	} else {
		log.Warn("POSTGRES_URL not set; using in-memory stores")
		draftStore = regstore.NewInMemory()
		accountStore = accountstore.NewInMemory()
		docStore = docstore.NewInMemory()
	}

	// Draft cache: Redis when configured, memory otherwise.
	var draftCache regservice.DraftCache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		draftCache = regstore.NewRedisCache(redisClient.Client, cfg.Drafts.CacheTTL)
		health["redis"] = func() error { return redisClient.Health(context.Background()) }
	} else {
		draftCache = regstore.NewMemoryCache()
	}

	// Audit pipeline: publisher -> worker -> store (+ optional Kafka sink).
	auditStore := audit.NewInMemoryStore()
	var auditSink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("failed to create kafka sink", "error", err.Error())
			os.Exit(1)
		}
		defer sink.Close()
		auditSink = sink
	}
	publisher := audit.NewPublisher(256)
	worker := audit.NewWorker(auditStore, auditSink, publisher.Events(), log)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("audit worker stopped", "error", err.Error())
		}
	}()

	tokens := jwttoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	accounts := accountservice.New(accountStore, tokens, cfg.JWT.AccessTokenTTL)
	documents := docservice.New(docStore)

	categoryStore := taxstore.NewInMemory()
	if err := taxstore.Seed(ctx, categoryStore); err != nil {
		log.Error("failed to seed taxonomy", "error", err.Error())
		os.Exit(1)
	}
	taxonomy := taxservice.New(categoryStore)

	registration := regservice.New(draftStore, draftCache, accounts, documents, log,
		regservice.WithDebounce(cfg.Drafts.DebounceInterval),
		regservice.WithMetrics(regmetrics.New()),
		regservice.WithEmitter(publisher),
	)
	defer registration.Close()

	httpMetrics := metrics.New()
	router := httptransport.NewRouter(log, httpMetrics, health,
		reghandler.New(registration, documents, tokens, log),
		taxhandler.New(taxonomy, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting prospace registration service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}
