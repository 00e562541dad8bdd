package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beaconlabs/beacon/internal/consts"
)

// Validate normalizes the config in place and fills defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}

	c.Gateway.Bind = strings.TrimSpace(c.Gateway.Bind)
	if c.Gateway.Bind == "" {
		c.Gateway.Bind = "0.0.0.0:8080"
	}
	if c.Gateway.RequestTimeout <= 0 {
		c.Gateway.RequestTimeout = 60
	}

	c.Store.Path = strings.TrimSpace(c.Store.Path)
	if c.Store.Path == "" {
		c.Store.Path = consts.DefaultDatabasePath()
	}

	if c.Scheduler.Enabled == nil {
		enabled := true
		c.Scheduler.Enabled = &enabled
	}
	if c.Scheduler.TickMinutes <= 0 {
		c.Scheduler.TickMinutes = 15
	}

	normalized := make(map[string]ChannelConfig, len(c.Channels))
	for key, one := range c.Channels {
		channelID := strings.TrimSpace(key)
		if channelID == "" {
			return errors.New("channel id cannot be empty")
		}
		one.ID = channelID
		one.Type = strings.ToLower(strings.TrimSpace(one.Type))
		if one.Type == "" {
			return fmt.Errorf("channel %s: type is required", channelID)
		}
		normalized[channelID] = one
	}
	c.Channels = normalized

	if c.Scheduler.ChannelID != "" {
		if _, ok := c.Channels[c.Scheduler.ChannelID]; !ok {
			return fmt.Errorf("scheduler channel %q is not a configured channel", c.Scheduler.ChannelID)
		}
	}

	return nil
}
