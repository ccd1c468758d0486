package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessageListsEveryRecipient(t *testing.T) {
	msg := string(buildMessage([]string{"grace@example.com", "sam@example.com"}, "Glucose alert escalation", "body"))

	assert.Contains(t, msg, "To: grace@example.com, sam@example.com\r\n")
	assert.Contains(t, msg, "Subject: Glucose alert escalation\r\n")
	assert.Contains(t, msg, "\r\n\r\nbody")
}

func TestBuildMessageSingleRecipient(t *testing.T) {
	msg := string(buildMessage([]string{"grace@example.com"}, "subject", "body"))

	assert.Contains(t, msg, "To: grace@example.com\r\n")
}
