package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	enginex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/engine"
	llmx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/llm"
	prefsx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/prefs"
	processorx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/processor"
	promptx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/prompt"
	responderx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/responder"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
	"github.com/AhmedAtia1507/Music-Store-Customer-Support/api"
	configx "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/config"
	groqx "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/groq"
	_ "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/logger/autoload"
	"github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/musicdb"
)

type AppConfig struct {
	Port         string `envconfig:"PORT" default:"8080"`
	SeedDatabase bool   `envconfig:"SEED_DATABASE" split_words:"true" default:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("GROQ")
	engineCfg := configx.MustNew[enginex.Config]("ENGINE")
	dbCfg := configx.MustNew[musicdb.Config]("POSTGRES")
	redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")

	// Fail fast on bad credentials before wiring anything else.
	if groqx.NewClient(llmCfg.GroqFor(llmx.RoleSupervisor)) == nil {
		log.Fatal().Msg("groq api key missing")
	}

	db, err := musicdb.Open(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open music database")
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping music database")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	if appCfg.SeedDatabase {
		if err := db.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed music database")
		}
	}

	store, closeStore := newStateStore(ctx, *redisCfg)
	defer closeStore()

	registry, err := processorx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build text processors")
	}

	prompts := promptx.LoadPromptSet()

	catalog, err := responderx.NewCatalog(registry.Catalog(), db, prompts.Catalog, prompts.CatalogAnswer)
	if err != nil {
		log.Fatal().Err(err).Msg("build catalog responder")
	}
	billing, err := responderx.NewBilling(registry.Billing(), db, prompts.Billing, prompts.BillingAnswer)
	if err != nil {
		log.Fatal().Err(err).Msg("build billing responder")
	}

	dispatcher, err := responderx.NewDispatcher(registry.Supervisor(), map[string]contractx.Responder{
		responderx.ResponderCatalog: catalog,
		responderx.ResponderBilling: billing,
	}, prompts.Supervisor, prompts.Compile)
	if err != nil {
		log.Fatal().Err(err).Msg("build dispatcher")
	}

	prefService, err := prefsx.NewService(store, registry.Preference(), prompts.Preference)
	if err != nil {
		log.Fatal().Err(err).Msg("build preference service")
	}

	eng, err := enginex.New(
		store,
		db,
		registry.Verifier(),
		registry.Summary(),
		prefService,
		dispatcher,
		enginex.Prompts{Verification: prompts.Verification, Summary: prompts.Summary},
		*engineCfg,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build workflow engine")
	}

	srv := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewHandler(eng).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-runCtx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

// newStateStore prefers Redis when an address is configured and falls back to
// the in-memory store otherwise, so local runs need no infrastructure.
func newStateStore(ctx context.Context, cfg statex.RedisConfig) (statex.Store, func()) {
	if cfg.Addr == "" {
		log.Warn().Msg("no redis address configured, using in-memory state store")
		return statex.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("ping redis")
	}

	store, err := statex.NewRedisStore(client, statex.WithTTL(cfg.TTL))
	if err != nil {
		log.Fatal().Err(err).Msg("build redis store")
	}
	return store, func() { _ = client.Close() }
}
