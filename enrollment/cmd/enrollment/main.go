package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediocregopher/radix/v4"
	"github.com/tilinna/clock"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/cache"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/cassandra"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/db"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/logging"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/producer"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/auth"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/content"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/enrollment"
	enrollmentHTTP "github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/http"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/partner"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/transform"
)

func main() {
	config.LoadEnvFile()
	conf := loadConfig()

	logger := logging.Setup("enrollment", logging.ParseLevel(os.Getenv("LOG_LEVEL")))

	sqlDB, err := db.InitDB(conf.DBConf)
	if err != nil {
		panic(err)
	}
	defer sqlDB.Close()

	gormDB, err := db.OpenGorm(sqlDB)
	if err != nil {
		panic(err)
	}

	appCache := cache.Disabled()
	if conf.CacheConf.Enabled {
		redisClient, err := (radix.PoolConfig{}).New(context.Background(), conf.CacheConf.TransportProtocol, fmt.Sprintf("%s:%s", conf.CacheConf.Host, conf.CacheConf.Port))
		if err != nil {
			panic(err)
		}
		defer redisClient.Close()

		appCache = cache.NewCache(redisClient)
	} else {
		logger.Info("cache disabled by configuration")
	}

	session, err := cassandra.NewSession(conf.CassandraConf)
	if err != nil {
		panic(err)
	}
	defer session.Close()

	kafkaWriter := producer.NewKafkaWriter(conf.KafkaConf)
	defer kafkaWriter.Close()

	validator, err := auth.NewValidator(conf.TokenConf)
	if err != nil {
		panic(err)
	}

	realClock := clock.Realtime()
	service := enrollment.NewService(
		enrollment.Config{
			CacheTTL:            conf.CacheConf.TTL,
			ProgressUpdateTopic: conf.KafkaConf.UserProgressUpdateTopic,
		},
		enrollment.Dependencies{
			Clock:       realClock,
			Validator:   validator,
			Repository:  enrollment.NewRepository(cassandra.NewOperation(session), conf.CassandraConf.Keyspace, enrollment.DefaultTable),
			Contents:    content.NewFetcher(content.NewRepository(gormDB), appCache, conf.CacheConf.TTL),
			Cache:       appCache,
			Partners:    partner.NewClient(conf.PartnerConf),
			Transformer: transform.NewEngine(),
			Producer:    producer.NewProducer(kafkaWriter),
		},
	)

	srv := &enrollmentHTTP.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.HTTPConf.Host, conf.HTTPConf.Port),
		Service: service,
		Clock:   realClock,
		Logger:  logger,
	}

	serverError := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil {
			serverError <- err
		}
	}()

	waitForTermination(serverError)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
}

func waitForTermination(serverError chan error) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-serverError:
		slog.Error("HTTP server failure", "error", err)
	}
}

type EnrollmentConfig struct {
	DBConf        config.DBConfig
	CacheConf     config.CacheConfig
	CassandraConf config.CassandraConfig
	KafkaConf     config.KafkaConfig
	HTTPConf      config.HTTPServerConfig
	PartnerConf   config.PartnerAPIConfig
	TokenConf     config.TokenConfig
}

func loadConfig() EnrollmentConfig {
	return EnrollmentConfig{
		DBConf:        config.LoadDBConfig(),
		CacheConf:     config.LoadCacheConfig(),
		CassandraConf: config.LoadCassandraConfig(),
		KafkaConf:     config.LoadKafkaConfig(),
		HTTPConf:      config.LoadHTTPServerConfig(),
		PartnerConf:   config.LoadPartnerAPIConfig(),
		TokenConf:     config.LoadTokenConfig(),
	}
}
