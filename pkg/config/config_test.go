package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir string, name string, contents string) string {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(contents), 0644)
	require.NoError(t, err)
	return path
}

func TestProcess(t *testing.T) {
	t.Setenv(ENV_CONFIG, "")

	// Default config
	config, err := Process([]string{})
	require.NoError(t, err)
	assert.Equal(t, 7000, config.Receiver.Port)
	assert.Equal(t, 33*time.Millisecond, config.Receiver.PollInterval)
	assert.Equal(t, 1024, config.Receiver.BufferSize)
	assert.True(t, config.Rig.KeepOriginal)
	assert.True(t, config.Rig.UseRoot)
	assert.False(t, config.Rig.ResetOnStop)
	assert.Equal(t, 30, config.Frame.Rate)

	dir := t.TempDir()

	// yaml config
	{
		yaml := write(t, dir, "config.yaml", `
receiver:
  port: 1234
  pollInterval: 10ms
rig:
  keepOriginal: false
`)
		config, err := Process([]string{yaml})
		require.NoError(t, err)
		assert.Equal(t, 1234, config.Receiver.Port)
		assert.Equal(t, 10*time.Millisecond, config.Receiver.PollInterval)
		assert.False(t, config.Rig.KeepOriginal)
		// untouched values keep their defaults
		assert.True(t, config.Rig.UseRoot)
		assert.Equal(t, 1024, config.Receiver.BufferSize)
	}

	// json config
	{
		json := write(t, dir, "config.json", `{
  "receiver": {
    "port": 1235,
    "quit": {
      "enabled": true
    }
  }
}`)
		config, err := Process([]string{json})
		require.NoError(t, err)
		assert.Equal(t, 1235, config.Receiver.Port)
		assert.True(t, config.Receiver.Quit.Enabled)
		assert.Equal(t, 7000, config.Receiver.Quit.Port)
	}

	// multiple yaml
	{
		yaml1 := write(t, dir, "config1.yaml", `
receiver:
  port: 1234
`)
		yaml2 := write(t, dir, "config2.yaml", `
receiver:
  port: 4321
monitor:
  enabled: true
`)
		config, err := Process([]string{yaml1, yaml2})
		require.NoError(t, err)
		assert.Equal(t, 4321, config.Receiver.Port)
		assert.True(t, config.Monitor.Enabled)
	}

	// empty file
	{
		empty := write(t, dir, "empty.yaml", "")
		_, err := Process([]string{empty})
		require.NoError(t, err)
	}
}

func TestProcessInvalid(t *testing.T) {
	t.Setenv(ENV_CONFIG, "")
	dir := t.TempDir()

	cases := map[string]string{
		"unknown.yaml": `
receiver:
  prot: 1234
`,
		"port.yaml": `
receiver:
  port: 70000
`,
		"rate.yaml": `
frame:
  rate: 0
`,
		"profile.yaml": `
receiver:
  profile:
    launch: true
`,
		"config.toml": `
[receiver]
port = 1234
`,
	}

	for name, contents := range cases {
		path := write(t, dir, name, contents)
		_, err := Process([]string{path})
		assert.Error(t, err, name)
	}

	_, err := Process([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "env.yaml", `
receiver:
  port: 9000
`)
	t.Setenv(ENV_CONFIG, path)

	config, err := Process(nil)
	require.NoError(t, err)
	assert.Equal(t, 9000, config.Receiver.Port)
}
