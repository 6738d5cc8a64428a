// README: Entry point; loads config, wires stores and services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"opsgate/internal/config"
	"opsgate/internal/events"
	httptransport "opsgate/internal/http"
	"opsgate/internal/infra"
	"opsgate/internal/logging"
	"opsgate/internal/maps"
	"opsgate/internal/modules/activity"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Config{}).WithError(err).Fatal("loading config")
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.WithError(err).Fatal("opsgate api stopped")
	}
}

// run owns every connection it opens, so they are closed before main exits.
func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	if cfg.Firebase.ProjectID == "" {
		return errors.New("OPSGATE_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("postgres init: %w", err)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("redis init: %w", err)
	}
	defer redisClient.Close()

	var geocoder checklist.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocoder(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			return fmt.Errorf("maps init: %w", err)
		}
		geocoder = g
	} else {
		log.Warn("OPSGATE_MAPS_API_KEY not set; checklist locations must carry coordinates")
	}

	var publisher validation.Publisher
	if cfg.AMQP.URL != "" {
		conn, err := infra.NewAMQP(cfg.AMQP.URL)
		if err != nil {
			return fmt.Errorf("rabbitmq init: %w", err)
		}
		defer conn.Close()
		pub, err := events.NewPublisher(conn)
		if err != nil {
			return fmt.Errorf("rabbitmq publisher init: %w", err)
		}
		defer pub.Close()
		publisher = pub
	} else {
		log.Warn("OPSGATE_AMQP_URL not set; gate events are not published")
	}

	var checklistRepo checklist.Repository = checklist.NewStore(dbPool)
	if cfg.Gate.CacheTTL > 0 {
		checklistRepo = checklist.NewCache(checklistRepo, redisClient, cfg.Gate.CacheTTL, log)
	}
	checklistSvc := checklist.NewService(checklistRepo, geocoder)

	passStore := validation.NewPassStore(redisClient)
	validationSvc := validation.NewService(
		checklistRepo,
		validation.NewAttemptStore(dbPool),
		passStore,
		publisher,
		cfg.Gate.PassTTL,
		log,
	)
	activitySvc := activity.NewService(checklistRepo, passStore, activity.NewStore(dbPool), log)

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Verifier:   verifier,
		Checklists: checklistSvc,
		Validation: validationSvc,
		Activities: activitySvc,
		Log:        log,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("http shutdown")
		}
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("opsgate api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
