package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/pipeline"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/stats"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Consume person records from Kafka and expose the ops API",
	Long: `Runs the streaming side of the reconciler. Records arriving on the input
topic are reconciled one at a time with the same semantics as the batch
import, and a small HTTP API exposes health and store statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := tracing.Init(ctx, cfg.AppName)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.WithError(err).Warn("Failed to shut down tracer provider")
			}
		}()

		db, err := database.Connect(ctx, database.Config{
			Driver:          cfg.DatabaseDriver,
			Host:            cfg.DatabaseHost,
			Port:            cfg.DatabasePort,
			UserName:        cfg.DatabaseUserName,
			Password:        cfg.DatabasePassword,
			Name:            cfg.DatabaseName,
			SSLMode:         cfg.DatabaseSSLMode,
			MaxOpenConns:    cfg.DatabaseMaxOpenConns,
			MaxIdleConns:    cfg.DatabaseMaxIdleConns,
			ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
		}, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		driver, err := migratepg.WithInstance(db.Unwrap(), &migratepg.Config{})
		if err != nil {
			logger.WithError(err).Error("Failed to create migration driver")
			return err
		}
		migrationService := database.NewMigrationService(logger, &database.MigrationConfig{
			MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
			Version:             uint(cfg.DatabaseMigrationVersion),
			Force:               cfg.DatabaseMigrationForce,
			AutoRollback:        cfg.DatabaseMigrationAutoRollback,
		})
		if err := migrationService.Migrate(cfg.DatabaseName, driver); err != nil {
			return err
		}

		gw := gateway.NewSQLGateway(db, logger)
		p := pipeline.NewPipeline(gw, logger).WithBatchTimeout(cfg.BatchTimeout)

		var sinks pipeline.MultiSink
		if cfg.KafkaEventsEnabled {
			producer := kafka.NewProducer(kafka.ProducerConfig{
				Brokers:      cfg.KafkaBrokers,
				Topic:        cfg.KafkaOutputTopic,
				BatchSize:    cfg.KafkaBatchSize,
				BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
				RequiredAcks: cfg.KafkaRequiredAcks,
				Compression:  cfg.KafkaCompression,
			}, logger)
			defer producer.Close()
			sinks = append(sinks, events.NewEmitter(producer, logger))
		}
		if cfg.GraphEnabled {
			client, err := graph.NewClient(graph.Config{
				Host:     cfg.GraphDBHost,
				Port:     cfg.GraphDBPort,
				Username: cfg.GraphDBUser,
				Password: cfg.GraphDBPassword,
			}, logger)
			if err != nil {
				return err
			}
			defer client.Close(ctx)
			sinks = append(sinks, graph.NewProjector(client, logger))
		}
		if len(sinks) > 0 {
			p = p.WithEventSink(sinks)
		}

		var consumerCheck interface{ Health() bool }
		if cfg.KafkaConsumerEnabled {
			handler := func(ctx context.Context, msg *kafka.IncomingMessage) error {
				_, err := p.ImportBatch(ctx, msg.PersonRecord.Source, []models.RawPersonRecord{*msg.PersonRecord})
				return err
			}
			consumer := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:       cfg.KafkaBrokers,
				Topic:         cfg.KafkaInputTopic,
				ConsumerGroup: cfg.KafkaConsumerGroup,
			}, logger, handler)
			if err := consumer.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := consumer.Stop(); err != nil {
					logger.WithError(err).Warn("Failed to stop consumer")
				}
			}()
			consumerCheck = consumer
		}

		e := echo.New()
		e.HideBanner = true
		e.HTTPErrorHandler = middleware.Error(logger)
		e.Use(otelecho.Middleware(cfg.AppName))
		e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
		e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second

		checker := health.NewChecker(db, consumerCheck, Version)
		checker.RegisterRoutes(e)
		stats.NewHandler(gw).RegisterRoutes(e)

		errCh := make(chan error, 1)
		go func() {
			if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		checker.SetReady(true)
		logger.WithContext(ctx).WithField("port", cfg.Port).Info("Server started")

		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
		case err := <-errCh:
			logger.WithError(err).Error("Server failed")
			return err
		}

		checker.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shut down server cleanly")
			return err
		}

		logger.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
