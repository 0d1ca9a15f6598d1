package di

import (
	"context"
	"fmt"
	"time"

	drepo "QuantEase/internal/domain/repository"
	domsvc "QuantEase/internal/domain/service"
	"QuantEase/internal/handler/api"
	internalrepo "QuantEase/internal/repository"
	svccache "QuantEase/internal/service/cache"
	"QuantEase/internal/service/yahoo"
	"QuantEase/internal/usecase"
	pkgch "QuantEase/pkg/clickhouse"
	"QuantEase/pkg/config"
	xhttp "QuantEase/pkg/http"
	pkgkafka "QuantEase/pkg/kafka"
	applogger "QuantEase/pkg/logger"
	"QuantEase/pkg/metrics"
	"QuantEase/pkg/queue"
	"QuantEase/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvidePriceProvider creates the Yahoo Finance daily bar provider.
func ProvidePriceProvider(cfg *config.Config) drepo.PriceProvider {
	return yahoo.New(
		cfg.Provider.RateBurst,
		cfg.Provider.RatePerSecond,
		cfg.Provider.Retries,
		cfg.Provider.RetryDelay,
	)
}

// ProvideCache creates the byte cache used for price series and job state.
// Redis when enabled, in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) svccache.BytesCache {
	if cfg.Redis.Enabled {
		return svccache.NewRedisCache(svccache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return svccache.NewTTLCache()
}

// ProvideSessionCache creates the in-process store for dialogue sessions.
func ProvideSessionCache() *svccache.TTLCache {
	return svccache.NewTTLCache()
}

// ProvideClickHouseClient creates a ClickHouse client when run archiving is
// enabled, and initializes the archive schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append(
		[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.SchemaStatements(cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRunStore creates the ClickHouse run archive repository.
func ProvideRunStore(chClient *pkgch.Client, cfg *config.Config) drepo.RunStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseRunStore(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

// ProvideKafkaProducer creates a Kafka producer for the kafka archive backend.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Archive.Enabled || cfg.Archive.Backend != "kafka" {
		return nil, nil
	}

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

// ProvideRunPublisher creates the Kafka run event publisher repository.
func ProvideRunPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.RunPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates the consumer that drains run events into the
// archive. Only used with the kafka archive backend.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Archive.Enabled || cfg.Archive.Backend != "kafka" {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRunEventsHandler registers the handler for the run events topic.
func ProvideRunEventsHandler(store drepo.RunStore, m drepo.Metrics, cfg *config.Config) *usecase.RunEventsHandler {
	if store == nil || cfg.Archive.Backend != "kafka" {
		return nil
	}
	return usecase.NewRunEventsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideRunRecorder creates the run archive recorder.
func ProvideRunRecorder(pub drepo.RunPublisher, store drepo.RunStore, m drepo.Metrics, cfg *config.Config) *usecase.RunRecorder {
	if !cfg.Archive.Enabled {
		return nil
	}
	return usecase.NewRunRecorder(pub, store, m, cfg.Archive.Backend)
}

// ProvideChartWriter creates the equity curve CSV writer.
func ProvideChartWriter(cfg *config.Config) *usecase.ChartWriter {
	return usecase.NewChartWriter(cfg.Strategy.ArtifactsDir)
}

// ProvideRunner creates the strategy evaluation pipeline.
func ProvideRunner(
	provider drepo.PriceProvider,
	cache svccache.BytesCache,
	charts *usecase.ChartWriter,
	recorder *usecase.RunRecorder,
	m drepo.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) domsvc.StrategyRunner {
	return usecase.NewStrategyPipeline(provider, cache, cfg.Strategy.SeriesTTL, charts, recorder, m, log)
}

// ProvideConversation creates the scripted dialogue use case.
func ProvideConversation(
	runner domsvc.StrategyRunner,
	sessions *svccache.TTLCache,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Conversation {
	return usecase.NewConversation(runner, sessions, cfg.Dialogue.SessionTTL, cfg.Strategy.Seed, log)
}

// ProvideAdvisor creates the portfolio recommendation use case.
func ProvideAdvisor(provider drepo.PriceProvider, log *applogger.Logger) domsvc.PortfolioAdvisor {
	return usecase.NewAdvisor(provider, log)
}

// ProvideJobTracker creates the async job state tracker.
func ProvideJobTracker(cache svccache.BytesCache) *usecase.JobTracker {
	return usecase.NewJobTracker(cache)
}

// ProvideJobQueue creates the Redis-backed worker queue for async runs.
func ProvideJobQueue(
	log *applogger.Logger,
	cfg *config.Config,
	runner domsvc.StrategyRunner,
	jobs *usecase.JobTracker,
) *queue.RedisQueue {
	if !cfg.Queue.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	q := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewRunJob(runner, jobs, log))
	return q
}

// ProvideQueueService exposes the queue as a publisher interface for the
// HTTP handler. Nil when async runs are disabled.
func ProvideQueueService(q *queue.RedisQueue) queue.QueueService {
	if q == nil {
		return nil
	}
	return q
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	log *applogger.Logger,
	runner domsvc.StrategyRunner,
	advisor domsvc.PortfolioAdvisor,
	conv *usecase.Conversation,
	recorder *usecase.RunRecorder,
	jobs *usecase.JobTracker,
	publish queue.QueueService,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewStrategyHandler(log, runner, advisor, conv, recorder, jobs, publish, cfg.Strategy.Seed)
}

// logPublisher adapts the Kafka producer to the log collector's publisher.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.RunEventsHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	recorder *usecase.RunRecorder,
) *server.App {
	var mh pkgkafka.MessageHandler
	if kh != nil {
		mh = kh
	}
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.Threshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      logPublisher{producer: producer},
		})
	}
	return server.New(cfg, log, handler, consumer, mh, chClient, jobQueue, recorder)
}
