package cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Http            *HTTPConfig
	Register        *RegisterCfg
	Db              *PGDBCfg // nil, если используется Redis
	Redis           *RedisCfg
	Kafka           *KafkaCfg // nil, если витрина покупателя отключена
	ShutdownTimeout time.Duration
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimit    int  // Запросов в минуту с одного IP
	TrustProxy   bool // Брать IP клиента из X-Forwarded-For / X-Real-IP
}

type RegisterCfg struct {
	Storage string         // redis | postgres
	Session string         // Пространство ключей кассы
	Seed    domain.Catalog // Каталог для первого запуска
}

type PGDBCfg struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

type KafkaCfg struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	register, err := loadRegisterCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var db *PGDBCfg
	if register.Storage == StoragePostgres {
		db, err = loadPGDBCfg(log)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		log.Errorf(err, "invalid SHUTDOWN_TIMEOUT")
		return nil, err
	}

	return &Config{
		Http:            http,
		Register:        register,
		Db:              db,
		Redis:           redis,
		Kafka:           kafka,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultRateLimit    = 120
	)

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

	rateLimit, err := parseIntEnv("HTTP_RATE_LIMIT", defaultRateLimit)
	if err != nil {
		log.Errorf(err, "invalid HTTP_RATE_LIMIT")
		return nil, e.Wrap("HTTP_RATE_LIMIT", err)
	}

	trustProxy, err := strconv.ParseBool(getEnvOrDefault("HTTP_TRUST_PROXY", "false"))
	if err != nil {
		log.Errorf(err, "invalid HTTP_TRUST_PROXY")
		return nil, e.Wrap("HTTP_TRUST_PROXY", e.ErrIncorrectEnvVariable)
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		RateLimit:    rateLimit,
		TrustProxy:   trustProxy,
	}, nil
}

func loadRegisterCfg(log logger.Logger) (*RegisterCfg, error) {
	const (
		defaultStorage = StorageRedis
		defaultSession = "default"
	)

	storage := strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", defaultStorage))
	if storage != StorageRedis && storage != StoragePostgres {
		err := fmt.Errorf("unknown STORAGE_BACKEND %q", storage)
		log.Errorf(err, "invalid STORAGE_BACKEND")
		return nil, e.Wrap("STORAGE_BACKEND", e.ErrIncorrectEnvVariable)
	}

	seed, err := parseSeedCatalog(getEnv("POS_SEED_CATALOG"))
	if err != nil {
		log.Errorf(err, "invalid POS_SEED_CATALOG")
		return nil, err
	}

	return &RegisterCfg{
		Storage: storage,
		Session: getEnvOrDefault("POS_SESSION", defaultSession),
		Seed:    seed,
	}, nil
}

// parseSeedCatalog разбирает JSON-массив товаров. Пустая строка дает стандартный каталог.
func parseSeedCatalog(raw string) (domain.Catalog, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.DefaultCatalog(), nil
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, e.Wrap("POS_SEED_CATALOG", err)
	}

	seed := make(domain.Catalog, 0, len(products))
	for _, p := range products {
		product := domain.NewProduct(p.Code, p.Name, p.Price, p.Stock)
		if !product.Valid() {
			return nil, e.Wrap(fmt.Sprintf("POS_SEED_CATALOG: product %q", p.Code), e.ErrInvalidProduct)
		}

		if err := seed.Add(*product); err != nil {
			return nil, e.Wrap(fmt.Sprintf("POS_SEED_CATALOG: product %q", p.Code), err)
		}
	}

	return seed, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost           = "localhost"
		defaultPort           = "5432"
		defaultSSLMode        = "disable"
		defaultMigrationsPath = "file://db/migrations"
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
		Host:           getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:           getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:           user,
		Password:       password,
		DBName:         dbName,
		SSLMode:        getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
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
	)

	db, err := strconv.Atoi(getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB)))
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := strconv.Atoi(getEnvOrDefault("MAX_RETRIES", strconv.Itoa(defaultMaxRetries)))
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

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
	}, nil
}

// loadKafkaCfg возвращает nil, если KAFKA_BROKERS не задан.
func loadKafkaCfg(log logger.Logger) (*KafkaCfg, error) {
	const (
		defaultTopic        = "pos.view"
		defaultWriteTimeout = 10 * time.Second
	)

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, nil
	}

	brokers := make([]string, 0)
	for _, b := range strings.Split(brokerStr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	writeTimeout, err := parseDurationEnv("KAFKA_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid KAFKA_WRITE_TIMEOUT")
		return nil, err
	}

	return &KafkaCfg{
		Brokers:      brokers,
		Topic:        getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		WriteTimeout: writeTimeout,
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
