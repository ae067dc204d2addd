package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/detgeo/gxviewer/clash"
)

// Config holds the tunables read from gxviewer.yaml. A missing file
// yields the defaults.
type Config struct {
	Tolerance         float32 `yaml:"tolerance"`
	Samples           int     `yaml:"samples"`
	Seed              int64   `yaml:"seed"`
	CylinderSegments  int     `yaml:"cylinderSegments"`
	WitnessResolution float32 `yaml:"witnessResolution"`
	LogLevel          string  `yaml:"logLevel"`
}

func defaultConfig() Config {
	return Config{
		Tolerance:         clash.DefaultTolerance,
		Samples:           clash.DefaultSamples,
		CylinderSegments:  20,
		WitnessResolution: 0.05,
		LogLevel:          "info",
	}
}

func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}
