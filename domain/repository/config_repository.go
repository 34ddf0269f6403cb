package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/spf13/viper"
)

func NewConfigRepository(path string) (*Config, error) {
	viper.SetConfigFile(path)

	viper.AutomaticEnv()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err := viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}

	var c Config
	err = viper.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	valid := validator.New()
	if err = valid.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}

	if len(c.RoleList) == 0 {
		c.RoleList = []string{
			entity.RoleIncidentCommander,
			"communications_liaison",
			"technical_lead",
		}
	}

	return &c, nil
}

type Config struct {
	DigestChannelID string            `mapstructure:"digest_channel_id" validate:"required"`
	ChannelPrefix   string            `mapstructure:"channel_prefix"`
	RoleList        []string          `mapstructure:"roles"`
	SeverityList    []entity.Severity `mapstructure:"severities" validate:"required,dive"`
	Confluence      ConfluenceConfig  `mapstructure:"confluence"`
}

type ConfluenceConfig struct {
	AncestorID string `mapstructure:"ancestor_id"`
	Space      string `mapstructure:"space"`
	Domain     string `mapstructure:"domain"`
}

func (c *Config) Severities(_ context.Context) []entity.Severity {
	var severities []entity.Severity
	for _, severity := range c.SeverityList {
		if severity.Disabled {
			continue
		}
		severities = append(severities, severity)
	}
	return severities
}

func (c *Config) SeverityByID(_ context.Context, id string) (*entity.Severity, error) {
	for _, severity := range c.SeverityList {
		if severity.ID == id {
			return &severity, nil
		}
	}
	return nil, fmt.Errorf("severity not found: %s", id)
}

// ReminderCadence reports whether the severity is reminder-eligible and at
// what interval. A severity with reminder_minutes = 0 carries no reminder.
func (c *Config) ReminderCadence(_ context.Context, id string) (time.Duration, bool) {
	for _, severity := range c.SeverityList {
		if severity.ID == id && !severity.Disabled && severity.ReminderMinutes > 0 {
			return time.Duration(severity.ReminderMinutes) * time.Minute, true
		}
	}
	return 0, false
}

func (c *Config) Roles(_ context.Context) []string {
	return c.RoleList
}
