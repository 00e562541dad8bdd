package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bytedance/sonic"
)

type (
	Config struct {
		Gateway   GatewayConfig            `yaml:"gateway"`
		Logging   LoggingConfig            `yaml:"logging"`
		Store     StoreConfig              `yaml:"store"`
		Scheduler SchedulerConfig          `yaml:"scheduler"`
		Channels  map[string]ChannelConfig `yaml:"channels"`
	}

	GatewayConfig struct {
		Bind           string `yaml:"bind"`
		RequestTimeout int    `yaml:"request_timeout"`
		// OperatorChatID receives diagnostics that have no community
		// context, such as direct-message flow failures.
		OperatorChatID string `yaml:"operator_chat_id"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	StoreConfig struct {
		Path string `yaml:"path"`
	}

	SchedulerConfig struct {
		Enabled     *bool  `yaml:"enabled"`
		TickMinutes int    `yaml:"tick_minutes"`
		ChannelID   string `yaml:"channel_id"` // adapter the scheduler sends through
	}

	ChannelConfig struct {
		ID      string                 `yaml:"-"`
		Type    string                 `yaml:"type"` // telegram
		Enabled bool                   `yaml:"enabled"`
		Config  map[string]interface{} `yaml:"config"`
	}
)

// SchedulerEnabled treats a missing flag as on.
func (c *SchedulerConfig) SchedulerEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Clone .
func (c *Config) Clone() (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	raw, err := sonic.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var cloned Config
	if err := sonic.Unmarshal(raw, &cloned); err != nil {
		return nil, fmt.Errorf("unmarshal config clone: %w", err)
	}

	return &cloned, nil
}

// Hash .
func (c *Config) Hash() string {
	json := sonic.Config{SortMapKeys: true, UseNumber: true}.Froze()
	raw, _ := json.Marshal(c)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
