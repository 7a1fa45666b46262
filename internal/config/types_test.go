package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	invalidPort := cfg
	invalidPort.Server.Listen.Port = -1
	require.Error(t, invalidPort.Validate())

	noAttempts := cfg
	noAttempts.Server.Gateway.MaxRetries = 0
	require.Error(t, noAttempts.Validate())

	negativeDelay := cfg
	negativeDelay.Server.Gateway.BaseDelay = "-1s"
	require.Error(t, negativeDelay.Validate())

	badTTL := cfg
	badTTL.Server.Gateway.TTL = "five minutes"
	require.Error(t, badTTL.Validate())

	redisWithoutAddress := cfg
	redisWithoutAddress.Server.Cache.Backend = "redis"
	require.Error(t, redisWithoutAddress.Validate())

	redisWithAddress := redisWithoutAddress
	redisWithAddress.Server.Cache.Redis.Address = "localhost:6379"
	require.NoError(t, redisWithAddress.Validate())

	unknownBackend := cfg
	unknownBackend.Server.Cache.Backend = "memcached"
	require.Error(t, unknownBackend.Validate())

	noStore := cfg
	noStore.Server.Store.Path = " "
	require.Error(t, noStore.Validate())

	badDue := cfg
	badDue.Server.Invoices.DueDays = -1
	require.Error(t, badDue.Validate())

	badValidity := cfg
	badValidity.Server.Quotations.ValidDays = -3
	require.Error(t, badValidity.Validate())

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())
}

func TestGatewayDurationsAllowEmpty(t *testing.T) {
	gw := GatewayConfig{}
	base, err := gw.BaseDelayDuration()
	require.NoError(t, err)
	require.Zero(t, base)
	ttl, err := gw.TTLDuration()
	require.NoError(t, err)
	require.Zero(t, ttl)
}
