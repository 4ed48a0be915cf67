package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/validation"
)

type leadRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,contactemail"`
	WhatsApp string `json:"whatsapp" validate:"required,whatsapp"`
}

type earlyAccessRequest struct {
	Email string `json:"email" validate:"required,gmail"`
}

func TestValidator_LeadRequest(t *testing.T) {
	v := validation.New()

	require.NoError(t, v.Validate(leadRequest{Name: "Luna", Email: "luna@example.com", WhatsApp: "+54 9 11 5555-1234"}))

	err := v.Validate(leadRequest{Name: "", Email: "luna@", WhatsApp: "abc"})
	require.Error(t, err)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainerrors.CodeValidation, de.Code)

	details, ok := de.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be a valid phone number", details["whatsapp"])
}

func TestValidator_EarlyAccessMessage(t *testing.T) {
	v := validation.New()

	err := v.Validate(earlyAccessRequest{Email: "someone@yahoo.com"})
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, map[string]string{"email": "only @gmail.com addresses are accepted"}, de.Details)
}

func TestGmailProblem(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"tarot.reader@gmail.com", ""},
		{"Tarot@GMAIL.com", ""},
		{"not an email", "must be a valid email address"},
		{"reader@hotmail.com", "only @gmail.com addresses are accepted"},
		{"ab@gmail.com", "username must be at least 3 characters"},
		{"abcdefghijabcdefghijabcdefghijk@gmail.com", "username is too long"},
		{"tarot..reader@gmail.com", "consecutive dots are not allowed"},
		{".tarot@gmail.com", "email cannot start or end with a dot"},
		{"tarot.@gmail.com", "email cannot start or end with a dot"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.GmailProblem(tt.email))
		})
	}
}
