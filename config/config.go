package config

import (
	"fmt"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"fern"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// PostgreSQL (canonical store)
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"lets_meet"`
	DatabaseSSLMode               string        `env:"DB_SSL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Batch import sources
	ExcelFilePath   string `env:"EXCEL_FILE_PATH" env-default:"Lets Meet DB Dump.xlsx" validate:"required"`
	XMLFilePath     string `env:"XML_FILE_PATH" env-default:"Lets_Meet_Hobbies.xml" validate:"required"`
	MongoURI        string `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase   string `env:"MONGO_DB" env-default:"LetsMeet"`
	MongoCollection string `env:"MONGO_COLLECTION" env-default:"users"`

	// Per-batch time budget. Zero disables the deadline.
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" env-default:"0"`

	// Kafka ingestion (serve mode)
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaInputTopic      string   `env:"KAFKA_INPUT_TOPIC" env-default:"person-records"`
	KafkaConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" env-default:"fern-consumer"`
	KafkaConsumerEnabled bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka producer (entity lifecycle events)
	KafkaOutputTopic   string `env:"KAFKA_OUTPUT_TOPIC" env-default:"person-events"`
	KafkaBatchSize     int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout  int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks  int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression   string `env:"KAFKA_COMPRESSION" env-default:"snappy"`
	KafkaEventsEnabled bool   `env:"KAFKA_EVENTS_ENABLED" env-default:"false"`

	// Ops server (serve mode)
	Port                          int `env:"PORT" env-default:"3004"`
	HttpServerWriteTimeoutSeconds int `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`

	// Graph projection (Memgraph/Neo4j over Bolt)
	GraphEnabled    bool   `env:"GRAPH_ENABLED" env-default:"false"`
	GraphDBHost     string `env:"GRAPH_DB_HOST" env-default:"localhost"`
	GraphDBPort     int    `env:"GRAPH_DB_PORT" env-default:"7687"`
	GraphDBUser     string `env:"GRAPH_DB_USER" env-default:""`
	GraphDBPassword string `env:"GRAPH_DB_PASSWORD" env-default:""`
}

// Load reads configuration from the environment, layering a local .env file
// underneath when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
