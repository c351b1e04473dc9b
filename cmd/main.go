package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"aquasim/internal/config"
	"aquasim/internal/handlers"
	"aquasim/internal/logger"
	"aquasim/internal/server"
	"aquasim/internal/service"
	"aquasim/internal/store"
	"aquasim/internal/transport/mqtt"
)

const shutdownTimeout = 10 * time.Second

func main() {
	pflag.StringP("config", "c", "", "path to config file")
	pflag.String("device-id", "", "device identifier")
	pflag.String("broker", "", "MQTT broker URL")
	pflag.Duration("tick-interval", 0, "time between sensor readings")
	pflag.Duration("run-duration", 0, "how long to run before exiting (0 = until signaled)")
	pflag.Bool("scenario", false, "replay the fixed filtration scenarios and exit")
	pflag.String("log-level", "", "debug | info | warn | error")
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	log.Infow("starting simulator",
		"device_id", cfg.DeviceID,
		"mode", cfg.DefaultMode,
		"broker", cfg.MQTT.BrokerURL,
		"tick_interval", cfg.TickInterval,
		"scenario", cfg.Scenario)

	// Transport: connect, then wire publisher and command subscriber.
	topics := mqtt.NewTopics(cfg.MQTT.Namespace, cfg.DeviceID)
	client, err := mqtt.NewClient(mqtt.ClientConfig{
		BrokerURL: cfg.MQTT.BrokerURL,
		ClientID:  cfg.MQTT.ClientID,
		Username:  cfg.MQTT.Username,
		Password:  cfg.MQTT.Password,
	}, log)
	if err != nil {
		log.Fatalw("failed to connect to mqtt broker", "err", err)
	}
	defer client.Close()
	pub := mqtt.NewPublisher(client, topics, log)

	services := service.NewService(service.Deps{
		DeviceID:    cfg.DeviceID,
		DefaultMode: cfg.DefaultMode,
		SettleDelay: cfg.SettleDelay,
		Seed:        cfg.RandomSeed,
		Store:       store.New(),
		Readings:    pub,
		Responses:   pub,
		Log:         log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel everything on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Infow("shutdown signal received")
		cancel()
	}()

	sub := mqtt.NewSubscriber(client, topics, services.Commands, log)
	if err := sub.Subscribe(ctx); err != nil {
		log.Fatalw("failed to subscribe to command topic", "err", err)
	}

	// Status API on its own goroutine; the simulation owns the main one.
	apiHandler := handlers.NewHandler(services, log)
	srv := &server.Server{}
	go func() {
		if err := srv.Run(cfg.HTTPPort, apiHandler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting status server", "err", err)
		}
	}()

	runCtx := ctx
	if cfg.RunDuration > 0 && !cfg.Scenario {
		var runCancel context.CancelFunc
		runCtx, runCancel = context.WithTimeout(ctx, cfg.RunDuration)
		defer runCancel()
	}

	if cfg.Scenario {
		if err := services.Scenario.Run(runCtx, service.DefaultScenarios(), cfg.TickInterval); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("scenario replay aborted", "err", err)
		}
	} else {
		// The device begins a filtration cycle on boot, like the real
		// hardware.
		services.Filtration.Start(ctx, cfg.DefaultMode, 0)
		services.Telemetry.Run(runCtx, cfg.TickInterval)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("status server forced to shutdown", "err", err)
	}
	log.Infow("simulator stopped")
}
