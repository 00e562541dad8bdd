package telegram

import (
	"errors"
	"time"

	"github.com/bytedance/gg/gconv"

	"github.com/beaconlabs/beacon/internal/platform"
)

type Config struct {
	Token       string // Telegram Bot Token
	PollTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("telegram bot token cannot be empty")
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 30 * time.Second
	}
	return nil
}

func (c *Config) GetType() platform.Type {
	return platform.Telegram
}

func ParseConfig(configMap map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	token := gconv.To[string](configMap["token"])
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	cfg.Token = token

	if pollTimeout := gconv.To[int](configMap["poll_timeout"]); pollTimeout > 0 {
		cfg.PollTimeout = time.Duration(pollTimeout) * time.Second
	} else {
		cfg.PollTimeout = 30 * time.Second
	}

	return cfg, nil
}
