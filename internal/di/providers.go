package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	mid "StockCast/internal/middleware"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/finnhub"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := candleTable(cfg)
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		"CREATE TABLE IF NOT EXISTS " + table +
			" (day Date, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64)" +
			" ENGINE=ReplacingMergeTree ORDER BY (symbol, day)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func candleTable(cfg *config.Config) string {
	table := cfg.ClickHouse.CandleTable
	if table == "" {
		table = "daily_candles"
	}
	return cfg.ClickHouse.Database + "." + table
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStore creates the ClickHouse candle store.
func ProvideCandleStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient, candleTable(cfg))
	store.SetLogger(l)
	return store
}

// ProvideBarPublisher creates the Kafka bar publisher.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.BarPublisher {
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic)
}

// ProvideFinnhubStream creates the Finnhub WebSocket stream.
func ProvideFinnhubStream(cfg *config.Config) repository.MarketStream {
	return finnhub.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
	)
}

// ProvideCandleSource creates the store-first candle source backed by the
// Finnhub REST API.
func ProvideCandleSource(store repository.CandleStore, cfg *config.Config, l *applogger.Logger) repository.CandleSource {
	upstream := finnhub.NewCandleClient(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.BaseURL,
		finnhub.WithTimeout(cfg.Finnhub.RequestTimeout),
	)
	return internalrepo.NewCachedCandleSource(store, upstream, l)
}

// ProvideBarProcessor creates the daily-bar processor.
func ProvideBarProcessor(
	pub repository.BarPublisher,
	store repository.CandleStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.BarProcessor {
	return usecase.NewBarProcessor(pub, store, metrics, cfg.Backend.Type)
}

// ProvideBarCollector creates the live bar collector with its buffering
// pipeline between the WebSocket and the bar processor.
func ProvideBarCollector(
	stream repository.MarketStream,
	proc *usecase.BarProcessor,
	metrics repository.Metrics,
) *usecase.BarCollector {
	pipe := mid.NewStreamPipeline(proc, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewBarCollector(stream, proc, metrics, pipe)
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(store repository.CandleStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvidePredictUseCase creates the prediction pipeline use case.
func ProvidePredictUseCase(
	source repository.CandleSource,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PredictUseCase {
	opts := []usecase.PredictOption{}
	if cfg.Predictor.LookbackYears > 0 {
		opts = append(opts, usecase.WithLookbackYears(cfg.Predictor.LookbackYears))
	}
	if cfg.Predictor.TrainingTimeout > 0 {
		opts = append(opts, usecase.WithTrainingTimeout(cfg.Predictor.TrainingTimeout))
	}
	return usecase.NewPredictUseCase(source, metrics, l, opts...)
}

// ProvideCandlesUseCase creates the raw-history use case.
func ProvideCandlesUseCase(source repository.CandleSource) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(source)
}

// ProvideHTTPHandler creates the Echo handler, wiring the layered report
// cache when Redis is enabled.
func ProvideHTTPHandler(
	l *applogger.Logger,
	predict *usecase.PredictUseCase,
	candles *usecase.CandlesUseCase,
	store repository.CandleStore,
	cfg *config.Config,
) *api.PredictEchoHandler {
	h := api.NewPredictEchoHandler(l, predict, candles)
	h.SetStore(store)

	if cfg.Predictor.Redis.Enabled {
		host, portStr, err := net.SplitHostPort(cfg.Predictor.Redis.Addr)
		if err != nil {
			l.Warn("invalid redis addr, report cache disabled", applogger.Error(err))
			return h
		}
		port, _ := strconv.Atoi(portStr)
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(host),
			cache.WithRedisPort(port),
			cache.WithRedisPassword(cfg.Predictor.Redis.Password),
			cache.WithRedisDB(cfg.Predictor.Redis.DB),
			cache.WithRedisPrefix("stockcast"),
		)
		if err != nil {
			l.Warn("redis unavailable, report cache disabled", applogger.Error(err))
			return h
		}
		h.SetCache(cache.NewLayeredCache(rc), cfg.Predictor.CacheTTL)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.BarCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
	handler *api.PredictEchoHandler,
) *server.App {
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if collector != nil {
		app.BarProc = collector.Processor()
	}
	return app
}
