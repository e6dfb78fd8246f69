package env

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harshasomisetty/solana-bootcamp/pkg/config"
)

func TestConfigDoesntExist(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	os.Setenv(env, "default")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	os.Unsetenv(env)

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	t.Setenv("ENV_CONFIG_TEST_TIMEOUT", "45s")
	t.Setenv("ENV_CONFIG_TEST_SKIP", "true")

	assert.Equal(t, 45*time.Second, NewDurationConfig("env_config_test_timeout", time.Second).Get(context.Background()))
	assert.True(t, NewBoolConfig("env_config_test_skip", false).Get(context.Background()))
	assert.EqualValues(t, 9, NewUint64Config("env_config_test_missing", 9).Get(context.Background()))
}
