package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	defaults = map[string]interface{}{
		"verbose":          false,
		"resolver.timeout": "30s",
		"resolver.dns":     "",
		"keystore.path":    "",
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("didkit")
	viper.AddConfigPath("/etc/didkit/")
	viper.AddConfigPath("$HOME/.didkit")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("DIDKIT")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logrus.New().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	c := &Config{}

	c.resolverTimeout = viper.GetDuration("resolver.timeout")
	if c.resolverTimeout <= 0 {
		c.resolverTimeout = 30 * time.Second
	}

	c.dnsServer = viper.GetString("resolver.dns")

	c.keystorePath = viper.GetString("keystore.path")
	if c.keystorePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "locating home dir")
		}

		dir := filepath.Join(home, ".didkit")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.Wrap(err, "creating config dir")
		}

		c.keystorePath = filepath.Join(dir, "keys.yaml")
	}

	if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	resolverTimeout time.Duration
	dnsServer       string
	keystorePath    string
}

func (c *Config) ResolverTimeout() time.Duration {
	return c.resolverTimeout
}

func (c *Config) DNSServer() string {
	return c.dnsServer
}

func (c *Config) KeystorePath() string {
	return c.keystorePath
}
