package main

import (
	"os"
	"path/filepath"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// configFileName is searched for in the working directory first, then in the
// user's home directory. A missing or malformed file falls through to the
// next location and finally to the built-in defaults.
const configFileName = ".dp800.yaml"

type toolConfig struct {
	Device struct {
		IP   string `yaml:"ip"`
		Port int    `yaml:"port"`
	} `yaml:"device"`
	Display struct {
		Color *bool `yaml:"color"`
	} `yaml:"display"`
	Tools struct {
		ScreenshotViewer string `yaml:"screenshot_viewer"`
	} `yaml:"tools"`
}

// ColorEnabled reports the display.color setting, defaulting to on.
func (c toolConfig) ColorEnabled() bool {
	if c.Display.Color == nil {
		return true
	}
	return *c.Display.Color
}

func defaultConfig() toolConfig {
	var c toolConfig
	c.Device.IP = dp800.DefaultHost
	c.Device.Port = dp800.DefaultPort
	return c
}

func loadConfig() toolConfig {
	paths := []string{configFileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configFileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		c := defaultConfig()
		if err := yaml.Unmarshal(data, &c); err != nil {
			logrus.WithField("path", path).Warnf("ignoring malformed config file: %v", err)
			continue
		}
		if c.Device.IP == "" {
			c.Device.IP = dp800.DefaultHost
		}
		if c.Device.Port == 0 {
			c.Device.Port = dp800.DefaultPort
		}
		return c
	}

	return defaultConfig()
}
