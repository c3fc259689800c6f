package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

// ENV_CONFIG names a configuration file to use when none is given.
const ENV_CONFIG = "MOCAP_CONFIG"

// merge decodes data on top of the values already in config. Fields the
// document does not mention keep their current value.
func merge(config *Config, name string, data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(config)
	if errors.Is(err, io.EOF) {
		// empty document
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not parse %s: %w", name, err)
	}
	return nil
}

func readFile(config *Config, path string) error {
	// Check if this is a valid file
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("does not exist")
	}

	extension := filepath.Ext(path)
	switch extension {
	// JSON is a subset of YAML, so both go through the same decoder.
	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return merge(config, path, data)
	}

	return fmt.Errorf(
		"not in a valid format",
	)
}

func checkPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if err := checkPort("receiver.port", c.Receiver.Port); err != nil {
		return err
	}

	if c.Receiver.Quit.Enabled {
		if err := checkPort("receiver.quit.port", c.Receiver.Quit.Port); err != nil {
			return err
		}
	}

	if c.Receiver.PollInterval <= 0 {
		return fmt.Errorf("receiver.pollInterval must be positive")
	}

	if c.Receiver.BufferSize <= 0 {
		return fmt.Errorf("receiver.bufferSize must be positive")
	}

	if c.Receiver.Profile.Launch && c.Receiver.Profile.Path == "" {
		return fmt.Errorf("receiver.profile.path is required when launch is enabled")
	}

	if c.Frame.Rate <= 0 {
		return fmt.Errorf("frame.rate must be positive, got %d", c.Frame.Rate)
	}

	if c.Monitor.Enabled {
		if err := checkPort("monitor.port", c.Monitor.Port); err != nil {
			return err
		}
	}

	return nil
}

// Process applies the default configuration and then each configuration
// file in order, later files overriding earlier ones. With no paths, the file
// named by MOCAP_CONFIG is used if it is set.
func Process(configPaths []string) (*Config, error) {
	config := Config{}
	if err := merge(&config, "<default>", DEFAULT); err != nil {
		return nil, fmt.Errorf(
			"invalid default config file: %v",
			err,
		)
	}

	if len(configPaths) == 0 {
		if path, ok := os.LookupEnv(ENV_CONFIG); ok && path != "" {
			configPaths = []string{path}
		}
	}

	for _, path := range configPaths {
		err := readFile(&config, path)
		if err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %v",
				path,
				err,
			)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
