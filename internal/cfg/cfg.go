package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type Config struct {
	Http      *HTTPConfig
	Db        *PGDBCfg
	Qdrant    *QdrantCfg
	Redis     *RedisCfg
	Embedding *EmbeddingCfg
	Kafka     *KafkaCfg
	Recommend *RecommendCfg
	Indexer   *IndexerCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	SupplierTTL time.Duration
}

// EmbeddingCfg описывает подключение к провайдеру эмбеддингов (OpenRouter-совместимый API).
// Конструируется один раз при старте процесса и передается по ссылке в клиент.
type EmbeddingCfg struct {
	BaseURL       string
	ApiKey        string
	Model         string
	Dimensions    int
	SingleTimeout time.Duration // таймаут одиночного запроса
	BatchTimeout  time.Duration // таймаут батчевого запроса
	MaxConcurrent int           // лимит параллельных под-батчей
	BatchSize     int           // размер под-батча по умолчанию
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// RecommendCfg — настраиваемые веса композитной оценки и параметры поиска.
type RecommendCfg struct {
	SimilarityWeight    float64
	QuoteWeight         float64
	RecencyWeight       float64
	QuoteSaturation     float64       // количество котировок, при котором сигнал насыщается
	RecencyWindow       time.Duration // окно линейного затухания recency-фактора
	DefaultTopK         int
	SimilarityThreshold float64
	TopMatchedProducts  int
}

// IndexerCfg — параметры фонового воркера переиндексации.
type IndexerCfg struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	StaleAfter   time.Duration // после этого срока processing-событие считается брошенным
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedding, err := loadEmbeddingCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recommend, err := loadRecommendCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	indexer, err := loadIndexerCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:      http,
		Db:        db,
		Qdrant:    qdrant,
		Redis:     redis,
		Embedding: embedding,
		Kafka:     kafka,
		Recommend: recommend,
		Indexer:   indexer,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "768"
		defaultCollection     = "supplier_products"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		logger.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultSupplierTTL  = 5 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetriesStr := getEnvOrDefault("MAX_RETRIES", strconv.Itoa(defaultMaxRetries))
	maxRetries, err := strconv.Atoi(maxRetriesStr)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	supplierTTL, err := parseDurationEnv("SUPPLIER_TTL", defaultSupplierTTL)
	if err != nil {
		log.Errorf(err, "invalid SUPPLIER_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		SupplierTTL: supplierTTL,
	}, nil
}

func loadEmbeddingCfg(log logger.Logger) (*EmbeddingCfg, error) {
	const (
		defaultBaseURL       = "https://openrouter.ai/api/v1/embeddings"
		defaultModel         = "google/gemini-embedding-001"
		defaultDimensions    = "768"
		defaultSingleTimeout = 30 * time.Second
		defaultBatchTimeout  = 60 * time.Second
		defaultMaxConcurrent = 4
		defaultBatchSize     = 50
	)

	apiKey := getEnv("OPENROUTER_API_KEY")
	if apiKey == "" {
		err := fmt.Errorf("OPENROUTER_API_KEY is required")
		log.Errorf(err, "missing OPENROUTER_API_KEY")
		return nil, err
	}

	dimensionsStr := getEnvOrDefault("EMBEDDING_DIMENSIONS", defaultDimensions)
	dimensions, err := strconv.Atoi(dimensionsStr)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_DIMENSIONS")
		return nil, err
	}

	singleTimeout, err := parseDurationEnv("EMBEDDING_TIMEOUT", defaultSingleTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_TIMEOUT")
		return nil, err
	}

	batchTimeout, err := parseDurationEnv("EMBEDDING_BATCH_TIMEOUT", defaultBatchTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_BATCH_TIMEOUT")
		return nil, err
	}

	maxConcurrent, err := parseIntEnv("EMBEDDING_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		return nil, e.Wrap("EMBEDDING_MAX_CONCURRENT", err)
	}

	batchSize, err := parseIntEnv("EMBEDDING_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("EMBEDDING_BATCH_SIZE", err)
	}

	return &EmbeddingCfg{
		BaseURL:       getEnvOrDefault("EMBEDDING_BASE_URL", defaultBaseURL),
		ApiKey:        apiKey,
		Model:         getEnvOrDefault("EMBEDDING_MODEL", defaultModel),
		Dimensions:    dimensions,
		SingleTimeout: singleTimeout,
		BatchTimeout:  batchTimeout,
		MaxConcurrent: maxConcurrent,
		BatchSize:     batchSize,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "embedding-events"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := getEnvOrDefault("KAFKA_TOPIC", defaultTopic)

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadRecommendCfg() (*RecommendCfg, error) {
	const (
		defaultTopK               = 50
		defaultTopMatchedProducts = 3
	)

	recencyWindow, err := parseDurationEnv("RECENCY_WINDOW", 180*24*time.Hour)
	if err != nil {
		return nil, e.Wrap("RECENCY_WINDOW", err)
	}

	threshold, err := parseFloatEnv("SIMILARITY_THRESHOLD", 0.3)
	if err != nil {
		return nil, e.Wrap("SIMILARITY_THRESHOLD", err)
	}

	topK, err := parseIntEnv("SEARCH_TOP_K", defaultTopK)
	if err != nil {
		return nil, e.Wrap("SEARCH_TOP_K", err)
	}

	return &RecommendCfg{
		SimilarityWeight:    0.6,
		QuoteWeight:         0.3,
		RecencyWeight:       0.1,
		QuoteSaturation:     10,
		RecencyWindow:       recencyWindow,
		DefaultTopK:         topK,
		SimilarityThreshold: threshold,
		TopMatchedProducts:  defaultTopMatchedProducts,
	}, nil
}

func loadIndexerCfg() (*IndexerCfg, error) {
	const (
		defaultPollInterval = 30 * time.Second
		defaultBatchSize    = 10
		defaultMaxAttempts  = 5
		defaultBaseBackoff  = 1 * time.Second
		defaultMaxBackoff   = 5 * time.Minute
		defaultStaleAfter   = 10 * time.Minute
	)

	pollInterval, err := parseDurationEnv("INDEXER_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return nil, e.Wrap("INDEXER_POLL_INTERVAL", err)
	}

	batchSize, err := parseIntEnv("INDEXER_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("INDEXER_BATCH_SIZE", err)
	}

	maxAttempts, err := parseIntEnv("INDEXER_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return nil, e.Wrap("INDEXER_MAX_ATTEMPTS", err)
	}

	baseBackoff, err := parseDurationEnv("INDEXER_BASE_BACKOFF", defaultBaseBackoff)
	if err != nil {
		return nil, e.Wrap("INDEXER_BASE_BACKOFF", err)
	}

	maxBackoff, err := parseDurationEnv("INDEXER_MAX_BACKOFF", defaultMaxBackoff)
	if err != nil {
		return nil, e.Wrap("INDEXER_MAX_BACKOFF", err)
	}

	staleAfter, err := parseDurationEnv("INDEXER_STALE_AFTER", defaultStaleAfter)
	if err != nil {
		return nil, e.Wrap("INDEXER_STALE_AFTER", err)
	}

	return &IndexerCfg{
		PollInterval: pollInterval,
		BatchSize:    batchSize,
		MaxAttempts:  maxAttempts,
		BaseBackoff:  baseBackoff,
		MaxBackoff:   maxBackoff,
		StaleAfter:   staleAfter,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	floatValue, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return floatValue, nil
}
