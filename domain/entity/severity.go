package entity

type Severity struct {
	ID              string `mapstructure:"id" validate:"required"`
	Description     string `mapstructure:"description" validate:"required"`
	ReminderMinutes int    `mapstructure:"reminder_minutes" validate:"gte=0"`
	Disabled        bool   `mapstructure:"disabled"`
}
