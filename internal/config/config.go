package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PingTimeout time.Duration
}

type PostgresConfig struct {
	User        string
	Password    string
	Name        string
	Host        string
	Port        int
	SSLMode     string
	PingTimeout time.Duration
}

type BookingConfig struct {
	SweepInterval   time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postregsHost := os.Getenv("POSTGRES_HOST")
	if postregsHost == "" {
		postregsHost = "localhost"
	}

	postregsPortStr := os.Getenv("POSTGRES_PORT")
	if postregsPortStr == "" {
		postregsPortStr = "5432"
	}

	postregsPort, err := strconv.Atoi(postregsPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresPing, err := durationEnv("POSTGRES_PING_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PING_TIMEOUT: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:        postgresUser,
		Password:    postgresPassword,
		Name:        postgresDB,
		Host:        postregsHost,
		Port:        postregsPort,
		SSLMode:     postgresSSLMode,
		PingTimeout: postgresPing,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}

	redisPing, err := durationEnv("REDIS_PING_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid REDIS_PING_TIMEOUT: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:        redisAddr,
		Password:    "",
		DB:          0,
		PingTimeout: redisPing,
	}

	sweepInterval, err := durationEnv("BOOKING_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid BOOKING_SWEEP_INTERVAL: %w", op, err)
	}

	rateLimit, err := intEnv("BOOKING_RATE_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid BOOKING_RATE_LIMIT: %w", op, err)
	}

	rateWindow, err := durationEnv("BOOKING_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid BOOKING_RATE_WINDOW: %w", op, err)
	}

	bookingCfg := BookingConfig{
		SweepInterval:   sweepInterval,
		RateLimit:       rateLimit,
		RateLimitWindow: rateWindow,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Booking:  bookingCfg,
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
