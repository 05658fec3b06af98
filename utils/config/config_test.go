package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/config"
	"gopkg.in/yaml.v2"
)

func validConfig() config.Config {
	return config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 100, Interval: 1},
		},
		Vehicles: config.VehicleConfig{Count: 10, Seed: 42},
	}
}

func TestRuntimeConfigDefaults(t *testing.T) {
	rc, err := config.NewRuntimeConfig(validConfig())
	require.NoError(t, err)
	assert.Equal(t, config.SignalOpen, rc.C.Signal.Policy)
	assert.Equal(t, 8, rc.V.RouteLength)
	assert.Equal(t, map[string]float64{"normal": 1}, rc.V.Profiles)
}

func TestRuntimeConfigCycleDefaults(t *testing.T) {
	c := validConfig()
	c.Control.Signal.Policy = config.SignalCycle
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 30.0, rc.C.Signal.Green)
}

func TestRuntimeConfigValidation(t *testing.T) {
	c := validConfig()
	c.Control.Step.Interval = 0
	_, err := config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = validConfig()
	c.Control.Step.Total = -1
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = validConfig()
	c.Vehicles.Count = -1
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = validConfig()
	c.Control.Signal.Policy = "adaptive"
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)
}

func TestConfigYAML(t *testing.T) {
	data := `
input:
  network: net.geojson
control:
  step:
    start: 0
    total: 3600
    interval: 1.0
  signal:
    policy: cycle
    green: 15
vehicles:
  count: 100
  seed: 42
  route_length: 5
  profiles:
    aggressive: 0.2
    normal: 0.6
    cautious: 0.2
`
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	assert.Equal(t, "net.geojson", c.Input.Network)
	assert.Equal(t, int32(3600), c.Control.Step.Total)
	assert.Equal(t, 15.0, c.Control.Signal.Green)
	assert.Equal(t, 100, c.Vehicles.Count)
	assert.Equal(t, 0.6, c.Vehicles.Profiles["normal"])

	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 5, rc.V.RouteLength)
}
