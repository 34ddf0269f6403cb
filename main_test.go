package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("PAGERDUTY_API_TOKEN", "")
	t.Setenv("PAGERDUTY_FROM_EMAIL", "")
	assert.NoError(t, validateEnv())

	// paging token without a sender address is a boot error
	t.Setenv("PAGERDUTY_API_TOKEN", "pd-token")
	assert.Error(t, validateEnv())

	t.Setenv("PAGERDUTY_FROM_EMAIL", "oncall@example.com")
	assert.NoError(t, validateEnv())
}

func TestValidateEnvMissingSlackToken(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	assert.Error(t, validateEnv())
}
