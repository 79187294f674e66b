package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCacheConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Setenv(cacheEnabled, "false")
		t.Setenv(cacheTTL, "60")

		c := LoadCacheConfig()
		assert.False(t, c.Enabled)
		assert.Equal(t, uint(60), c.TTL)
		assert.Empty(t, c.Host)
	})

	t.Run("enabled_defaults", func(t *testing.T) {
		t.Setenv(cacheEnabled, "")
		t.Setenv(cacheTTL, "")
		t.Setenv(cacheHost, "redis")
		t.Setenv(cachePort, "6379")
		t.Setenv(cacheTransportProtocol, "")

		c := LoadCacheConfig()
		assert.Equal(t, CacheConfig{
			Enabled:           true,
			Host:              "redis",
			Port:              "6379",
			TransportProtocol: "tcp",
			TTL:               3600,
		}, c)
	})
}

func TestParseSeconds(t *testing.T) {
	seconds, err := parseSeconds("900")
	require.NoError(t, err)
	assert.Equal(t, uint(900), seconds)

	for _, v := range []string{"0", "-1", "-3600", "1h"} {
		_, err := parseSeconds(v)
		assert.Error(t, err, v)
	}
}

func TestLoadCassandraConfig(t *testing.T) {
	t.Setenv(cassandraHosts, "cass-1, cass-2,,")
	t.Setenv(cassandraKeyspace, "")
	t.Setenv(cassandraConsistency, "ONE")
	t.Setenv(cassandraReplication, "")

	c := LoadCassandraConfig()
	assert.Equal(t, []string{"cass-1", "cass-2"}, c.Hosts)
	assert.Equal(t, "sunbird_courses", c.Keyspace)
	assert.Equal(t, "ONE", c.Consistency)
	assert.Equal(t, 1, c.ReplicationFactor)
}

func TestLoadKafkaConfig(t *testing.T) {
	t.Setenv(kafkaBrokers, "kafka:9092")
	t.Setenv(kafkaUserProgressUpdateTopic, "cornell.progress.update")

	c := LoadKafkaConfig()
	assert.Equal(t, []string{"kafka:9092"}, c.Brokers)
	assert.Equal(t, "cornell.progress.update", c.UserProgressUpdateTopic)
}

func TestLoadHTTPServerConfig(t *testing.T) {
	t.Setenv(httpServerHost, "")
	t.Setenv(httpServerPort, "")

	assert.Equal(t, HTTPServerConfig{Port: "8080"}, LoadHTTPServerConfig())
}

func TestLoadTokenConfig(t *testing.T) {
	t.Setenv(tokenKind, "JWT")
	t.Setenv(tokenPublicKey, "-----BEGIN PUBLIC KEY-----")

	c := LoadTokenConfig()
	assert.Equal(t, "jwt", c.Kind)
	assert.Equal(t, []byte("-----BEGIN PUBLIC KEY-----"), c.PublicKey)
}

func TestLoadPartnerAPIConfig(t *testing.T) {
	t.Setenv(partnerBaseURL, "http://partner.local")
	t.Setenv(partnerReadPath, "")
	t.Setenv(partnerAPIToken, "secret")

	assert.Equal(t, PartnerAPIConfig{
		BaseURL:  "http://partner.local",
		ReadPath: "/api/contentpartner/v1/read/",
		APIToken: "secret",
	}, LoadPartnerAPIConfig())
}
