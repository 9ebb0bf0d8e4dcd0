package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Channel modes
const (
	ModeModerated = "moderated"
	ModeModlog    = "modlog"
)

// Channel describes one chat the bot participates in
type Channel struct {
	ChatID    int64  `yaml:"chat_id"`
	ChatName  string `yaml:"chat_name"`
	Mode      string `yaml:"mode"`
	ModlogRef int64  `yaml:"modlog_ref,omitempty"`
}

// Channels is the set of configured chats
type Channels struct {
	Channels []Channel `yaml:"channels"`
}

// LoadChannels reads and validates the channels YAML file
func LoadChannels(path string) (*Channels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels file: %w", err)
	}
	return ParseChannels(data)
}

// ParseChannels parses channels configuration from YAML bytes
func ParseChannels(data []byte) (*Channels, error) {
	var cfg Channels
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse channels config: %w", err)
	}

	for _, ch := range cfg.Channels {
		if ch.Mode != ModeModerated && ch.Mode != ModeModlog {
			return nil, fmt.Errorf("channel %d: mode must be %q or %q, got %q",
				ch.ChatID, ModeModerated, ModeModlog, ch.Mode)
		}
	}

	return &cfg, nil
}

// Moderated returns all channels the bot audits
func (c *Channels) Moderated() []Channel {
	var out []Channel
	for _, ch := range c.Channels {
		if ch.Mode == ModeModerated {
			out = append(out, ch)
		}
	}
	return out
}

// Modlogs returns all escalation channels
func (c *Channels) Modlogs() []Channel {
	var out []Channel
	for _, ch := range c.Channels {
		if ch.Mode == ModeModlog {
			out = append(out, ch)
		}
	}
	return out
}

// LinkedModlog returns the modlog channel a moderated chat escalates to
func (c *Channels) LinkedModlog(chatID int64) (Channel, bool) {
	var ref int64
	for _, ch := range c.Channels {
		if ch.ChatID == chatID {
			ref = ch.ModlogRef
			break
		}
	}
	if ref == 0 {
		return Channel{}, false
	}
	for _, ch := range c.Channels {
		if ch.ChatID == ref && ch.Mode == ModeModlog {
			return ch, true
		}
	}
	return Channel{}, false
}
