package commands

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/feeds"
	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/pipeline"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run a full batch import from all configured feeds",
	Long: `Reads every configured source in a fixed order (tabular dump, document
store, hobby export) and reconciles the records into the canonical store.
Each source runs in its own transaction, so a failure in one source leaves
the others untouched. Re-running the import is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()

		shutdownTracing, err := tracing.Init(ctx, cfg.AppName)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.WithError(err).Warn("Failed to shut down tracer provider")
			}
		}()

		var gw gateway.Gateway
		if importDryRun {
			logger.Info("Dry run: records are reconciled in memory and discarded")
			gw = gateway.NewMemoryGateway()
		} else {
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
			gw = gateway.NewSQLGateway(db, logger)
		}

		p := pipeline.NewPipeline(gw, logger).WithBatchTimeout(cfg.BatchTimeout)

		var sinks pipeline.MultiSink
		if cfg.KafkaEventsEnabled && !importDryRun {
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
		if cfg.GraphEnabled && !importDryRun {
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

		sources, cleanup, err := buildFeeds(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := p.Run(ctx, sources)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Error("Import aborted")
			return err
		}

		logger.WithContext(ctx).WithFields(map[string]any{
			"processed":      summary.Processed,
			"skipped":        summary.Skipped,
			"parse_failures": summary.ParseFailures,
			"users_created":  summary.Users.Created,
			"users_reused":   summary.Users.Reused,
			"addresses":      summary.Addresses.Created,
			"hobbies":        summary.Hobbies.Created,
			"hobby_links":    summary.HobbyLinks,
			"friendships":    summary.Friendships,
			"likes":          summary.Likes,
			"messages":       summary.Messages,
		}).Info("Import completed")

		for _, failure := range summary.Failures {
			logger.WithContext(ctx).WithFields(map[string]any{
				"source": failure.Source,
				"index":  failure.Index,
				"email":  failure.Email,
				"reason": failure.Reason,
			}).Warn("Record skipped")
		}

		return nil
	},
}

// buildFeeds assembles the sources in their canonical order. The order is
// load-bearing: the first source to mention an attribute owns it.
func buildFeeds(ctx context.Context, cfg *config.Config, logger ectologger.Logger) ([]feeds.Feed, func(), error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to connect to document store")
		return nil, nil, err
	}

	cleanup := func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to disconnect document store client")
		}
	}

	sources := []feeds.Feed{
		feeds.NewExcelFeed(cfg.ExcelFilePath, logger),
		feeds.NewMongoFeed(mongoClient, cfg.MongoDatabase, cfg.MongoCollection, logger),
		feeds.NewXMLFeed(cfg.XMLFilePath, logger),
	}
	return sources, cleanup, nil
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "reconcile in memory without touching the database")
	rootCmd.AddCommand(importCmd)
}
