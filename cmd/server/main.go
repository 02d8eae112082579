// Command server runs the vouch HTTP server: mutual human verification backed
// by a people directory, a credential provider and a PostgreSQL ledger.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vouch/internal/directory"
	"vouch/internal/directory/ldap"
	"vouch/internal/directory/static"
	"vouch/internal/lockout"
	"vouch/internal/login"
	"vouch/internal/login/none"
	"vouch/internal/login/radius"
	"vouch/internal/platform/config"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/postgres"
	"vouch/internal/platform/redis"
	"vouch/internal/report"
	"vouch/internal/session"
	httptransport "vouch/internal/transport/http"
	"vouch/internal/verification/metrics"
	"vouch/internal/verification/service"
	"vouch/internal/verification/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	redisClient, err := redis.New(cfg.Redis.URL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	if err := registerProviders(cfg, log); err != nil {
		return err
	}
	people, err := directory.New(cfg.Directory.Provider)
	if err != nil {
		return err
	}
	loginProvider, err := login.New(cfg.Login.Provider)
	if err != nil {
		return err
	}
	if !loginProvider.ProductionReady() {
		log.Warn("login provider performs no real credential verification",
			"provider", cfg.Login.Provider,
		)
	}

	ledger, err := service.New(store.NewPostgres(db), people,
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithConfig(service.Config{
			Timeout:        cfg.Verification.Timeout,
			SecretLength:   cfg.Verification.SecretLength,
			VariableLength: cfg.Verification.VariableLength,
		}),
	)
	if err != nil {
		return err
	}

	var lockStore lockout.Store = lockout.NewMemory()
	if redisClient != nil {
		lockStore = lockout.NewRedis(redisClient.Client)
	}
	locks, err := lockout.New(lockStore,
		lockout.WithLogger(log),
		lockout.WithConfig(lockout.Config{
			Threshold:    cfg.Lockout.Threshold,
			Window:       cfg.Lockout.Window,
			LockDuration: cfg.Lockout.LockDuration,
		}),
	)
	if err != nil {
		return err
	}

	sessions, err := session.New(cfg.Server.SessionKey, cfg.Server.SessionTimeout, cfg.Server.CookieSecure)
	if err != nil {
		return err
	}
	reports, err := report.New(ledger, report.Config{
		SMTPAddr: cfg.Report.SMTPAddr,
		From:     cfg.Report.From,
		To:       cfg.Report.To,
		Subject:  cfg.Report.Subject,
	}, report.WithLogger(log))
	if err != nil {
		return err
	}

	handler := httptransport.New(ledger, people, loginProvider, locks, reports,
		sessions, log, cfg.Directory.AttributeNames)
	health := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if redisClient != nil {
			return redisClient.Health(ctx)
		}
		return nil
	}
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(handler, sessions, health))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vouch server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// registerProviders maps configuration names to provider factories. Factories
// run lazily so only the selected provider's settings are validated.
func registerProviders(cfg *config.Config, log *slog.Logger) error {
	if err := directory.Register("ldap", func() (directory.Provider, error) {
		return ldap.New(ldap.Config{
			URL:        cfg.Directory.LDAPURL,
			Attributes: cfg.Directory.Attributes,
			Filter:     cfg.Directory.LDAPFilter,
			SizeLimit:  cfg.Directory.LDAPSizeLimit,
			PagedSize:  cfg.Directory.LDAPPagedSize,
			TimeLimit:  cfg.Directory.LDAPTimeLimit,
		}, log)
	}); err != nil {
		return err
	}
	if err := directory.Register("static", func() (directory.Provider, error) {
		return static.New(staticPeople(cfg.Directory.StaticPeople), log), nil
	}); err != nil {
		return err
	}

	if err := login.Register("none", func() (login.Provider, error) {
		return none.New(log), nil
	}); err != nil {
		return err
	}
	return login.Register("radius", func() (login.Provider, error) {
		return radius.New(radius.Config{
			Addr:          cfg.Login.RadiusAddr,
			Secret:        cfg.Login.RadiusSecret,
			NASIdentifier: cfg.Login.RadiusNASIdentifier,
			NASIPAddress:  cfg.Login.RadiusNASIPAddress,
			Timeout:       cfg.Login.RadiusTimeout,
		}, log)
	})
}

func staticPeople(entries []string) []directory.Person {
	people := make([]directory.Person, 0, len(entries))
	for _, entry := range entries {
		people = append(people, directory.NewPerson(strings.Split(entry, ":")))
	}
	return people
}
