package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/intradir/intradir/api/cmd/build/all"
	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/app/sdk/mux"
	"github.com/intradir/intradir/business/domain/adminbus"
	"github.com/intradir/intradir/business/domain/adminbus/stores/admindb"
	"github.com/intradir/intradir/business/domain/auditbus"
	"github.com/intradir/intradir/business/domain/auditbus/stores/auditdb"
	"github.com/intradir/intradir/business/domain/directorybus"
	"github.com/intradir/intradir/business/domain/directorybus/stores/oktaapi"
	"github.com/intradir/intradir/business/domain/presencebus"
	"github.com/intradir/intradir/business/domain/presencebus/stores/graphapi"
	"github.com/intradir/intradir/business/domain/presencebus/stores/presencecache"
	"github.com/intradir/intradir/business/domain/routebus"
	"github.com/intradir/intradir/business/domain/routebus/stores/routedb"
	"github.com/intradir/intradir/business/domain/tenancybus"
	"github.com/intradir/intradir/business/domain/tenancybus/stores/tenancydb"
	"github.com/intradir/intradir/business/sdk/secrets"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/foundation/keystore"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/intradir/intradir/foundation/otel"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var build = "develop"

type Config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		DebugHost          string        `envconfig:"WEB_DEBUG_HOST" default:"0.0.0.0:3010"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS" default:"*"`
	}
	Auth struct {
		KeysFolder string `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys"`
		ActiveKID  string `envconfig:"AUTH_ACTIVE_KID" default:"54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"`
		Issuer     string `envconfig:"AUTH_ISSUER" default:"https://intradir.local/auth/"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"intradir"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Secrets struct {
		Key string `envconfig:"SECRETS_KEY" required:"true"`
	}
	Graph struct {
		BaseURL string `envconfig:"GRAPH_BASE_URL"`
	}
	Okta struct {
		OrgURL   string `envconfig:"OKTA_ORG_URL"`
		APIToken string `envconfig:"OKTA_API_TOKEN"`
	}
	Cache struct {
		Capacity int `envconfig:"CACHE_CAPACITY" default:"10000"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST" default:"tempo:4317"`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"INTRADIR"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
		Enabled     bool    `envconfig:"TEMPO_ENABLED" default:"false"`
	}
}

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "INTRADIR", otel.GetTraceID, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// -------------------------------------------------------------------------
	// Configuration

	godotenv.Load()

	var cfg Config

	cfg.Version.Build = build
	cfg.Version.Desc = "INTRADIR"

	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Version.Build)
	defer log.Info(ctx, "shutdown complete")

	log.Info(ctx, "startup", "config", sanitizeConfig(cfg))
	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Version.Build)

	// -------------------------------------------------------------------------
	// Database Support

	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	defer db.Close()

	// -------------------------------------------------------------------------
	// Auth Support

	log.Info(ctx, "startup", "status", "initializing authentication support")

	ks := keystore.New()

	if _, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder)); err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/v1/liveness":  {},
			"/v1/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
		Enabled:     cfg.Tempo.Enabled,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer teardown(context.Background())

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Build Business Cores

	log.Info(ctx, "startup", "status", "initializing business support")

	keeper, err := secrets.NewKeeper(cfg.Secrets.Key)
	if err != nil {
		return fmt.Errorf("creating secrets keeper: %w", err)
	}

	tenancyBus := tenancybus.NewCore(log, tenancydb.NewStore(log, db, keeper))
	routeBus := routebus.NewCore(log, tenancyBus, routedb.NewStore(log, db))
	adminBus := adminbus.NewCore(admindb.NewStore(log, db))
	auditBus := auditbus.NewCore(auditdb.NewStore(log, db))

	var graphOpts []graphapi.Option
	if cfg.Graph.BaseURL != "" {
		graphOpts = append(graphOpts, graphapi.WithBaseURL(cfg.Graph.BaseURL))
	}
	presenceBus := presencebus.NewCore(log,
		presencecache.NewStore(log, cfg.Cache.Capacity),
		graphapi.NewStore(log, graphOpts...),
	)

	directoryBus := directorybus.NewCore(oktaapi.NewStore(log, oktaapi.Config{
		OrgURL:   cfg.Okta.OrgURL,
		APIToken: cfg.Okta.APIToken,
	}))

	authClient := auth.New(auth.Config{
		Log:       log,
		AdminBus:  adminBus,
		KeyLookup: ks,
		Issuer:    cfg.Auth.Issuer,
	})

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, expvar.Handler()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "err", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:  cfg.Version.Build,
		Log:    log,
		DB:     db,
		Tracer: tracer,
		BusConfig: mux.BusConfig{
			TenancyBus:   tenancyBus,
			RouteBus:     routeBus,
			PresenceBus:  presenceBus,
			DirectoryBus: directoryBus,
			AdminBus:     adminBus,
			AuditBus:     auditBus,
		},
		AuthConfig: mux.AuthConfig{
			Auth:  authClient,
			KeyID: cfg.Auth.ActiveKID,
		},
	}

	webAPI := mux.WebAPI(cfgMux,
		all.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func sanitizeConfig(cfg Config) string {
	cfg.DB.Password = "[MASKED]"
	cfg.Secrets.Key = "[MASKED]"
	cfg.Okta.APIToken = "[MASKED]"

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}
