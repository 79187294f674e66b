package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
)

type DBConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     string
}

type CacheConfig struct {
	Enabled           bool
	Host              string
	Port              string
	TransportProtocol string

	// TTL in seconds for every cached entry.
	TTL uint
}

type CassandraConfig struct {
	Hosts       []string
	Keyspace    string
	Consistency string

	// ReplicationFactor is only used when the keyspace is created.
	ReplicationFactor int
}

type KafkaConfig struct {
	Brokers                 []string
	UserProgressUpdateTopic string
}

type HTTPServerConfig struct {
	Host string
	Port string
}

type PartnerAPIConfig struct {
	BaseURL string
	// ReadPath is appended to BaseURL, the partner id goes right after it.
	ReadPath string
	APIToken string
}

type TokenConfig struct {
	// Kind is either "paseto" or "jwt".
	Kind      string
	PublicKey []byte
}

// LoadEnvFile loads a .env file when present. Variables already set in the
// environment win over the file.
func LoadEnvFile(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Printf("no .env file loaded, using process environment: %v", err)
	}
}

var (
	dbHost     = "DB_HOST"
	dbPort     = "DB_PORT"
	dbName     = "DB_NAME"
	dbUser     = "DB_USER"
	dbPassword = "DB_PASSWORD"
)

func LoadDBConfig() DBConfig {
	return DBConfig{
		Host:     mustGetenv(dbHost),
		Port:     mustGetenv(dbPort),
		Name:     mustGetenv(dbName),
		User:     mustGetenv(dbUser),
		Password: mustGetenv(dbPassword),
	}
}

var (
	cacheEnabled           = "CACHE_ENABLED"
	cacheHost              = "CACHE_HOST"
	cachePort              = "CACHE_PORT"
	cacheTransportProtocol = "CACHE_TRANSPORT_PROTOCOL"
	cacheTTL               = "CACHE_TTL_SECONDS"
)

func LoadCacheConfig() CacheConfig {
	var config = CacheConfig{
		Enabled: getenvBool(cacheEnabled, true),
		TTL:     getenvSeconds(cacheTTL, 3600),
	}

	if !config.Enabled {
		return config
	}

	config.Host = mustGetenv(cacheHost)
	config.Port = mustGetenv(cachePort)
	config.TransportProtocol = getenv(cacheTransportProtocol, "tcp")

	return config
}

var (
	cassandraHosts       = "CASSANDRA_HOSTS"
	cassandraKeyspace    = "CASSANDRA_KEYSPACE"
	cassandraConsistency = "CASSANDRA_CONSISTENCY"
	cassandraReplication = "CASSANDRA_REPLICATION_FACTOR"
)

func LoadCassandraConfig() CassandraConfig {
	return CassandraConfig{
		Hosts:       splitList(mustGetenv(cassandraHosts)),
		Keyspace:    getenv(cassandraKeyspace, "sunbird_courses"),
		Consistency: getenv(cassandraConsistency, "LOCAL_QUORUM"),

		ReplicationFactor: getenvInt(cassandraReplication, 1),
	}
}

var (
	kafkaBrokers                 = "KAFKA_BROKERS"
	kafkaUserProgressUpdateTopic = "KAFKA_USER_PROGRESS_UPDATE_TOPIC"
)

func LoadKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:                 splitList(mustGetenv(kafkaBrokers)),
		UserProgressUpdateTopic: mustGetenv(kafkaUserProgressUpdateTopic),
	}
}

var (
	httpServerHost = "HTTP_HOST"
	httpServerPort = "HTTP_PORT"
)

func LoadHTTPServerConfig() HTTPServerConfig {
	return HTTPServerConfig{
		Host: os.Getenv(httpServerHost),
		Port: getenv(httpServerPort, "8080"),
	}
}

var (
	partnerBaseURL  = "PARTNER_API_BASE_URL"
	partnerReadPath = "PARTNER_API_READ_PATH"
	partnerAPIToken = "PARTNER_API_TOKEN"
)

func LoadPartnerAPIConfig() PartnerAPIConfig {
	return PartnerAPIConfig{
		BaseURL:  mustGetenv(partnerBaseURL),
		ReadPath: getenv(partnerReadPath, "/api/contentpartner/v1/read/"),
		APIToken: os.Getenv(partnerAPIToken),
	}
}

var (
	tokenKind      = "TOKEN_VALIDATOR"
	tokenPublicKey = "TOKEN_PUBLIC_KEY"
)

func LoadTokenConfig() TokenConfig {
	kind := strings.ToLower(getenv(tokenKind, "paseto"))
	if kind != "paseto" && kind != "jwt" {
		log.Fatalf("wrong value for environment variable %s: %q", tokenKind, kind)
	}

	return TokenConfig{
		Kind:      kind,
		PublicKey: []byte(mustGetenv(tokenPublicKey)),
	}
}

func mustGetenv(name string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		log.Fatalf("missing environment variable: %s", name)
	}

	return v
}

func getenv(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}

	return v
}

func getenvInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("wrong format for environment variable %s: %v", name, err)
	}

	return i
}

func getenvSeconds(name string, def uint) uint {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}

	seconds, err := parseSeconds(v)
	if err != nil {
		log.Fatalf("wrong format for environment variable %s: %v", name, err)
	}

	return seconds
}

// parseSeconds reads a strictly positive number of seconds.
func parseSeconds(v string) (uint, error) {
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Trace(err)
	}

	if i <= 0 {
		return 0, errors.Errorf("%d is not a positive number of seconds", i)
	}

	return uint(i), nil
}

func getenvBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("wrong format for environment variable %s: %v", name, err)
	}

	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
