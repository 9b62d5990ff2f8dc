package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

type profile struct {
	FirstName string   `json:"firstName" validate:"required,min=2,max=50"`
	Password  string   `json:"password" validate:"omitempty,password"`
	Settings  settings `json:"settings"`
}

func TestMessages_UsesJSONPaths(t *testing.T) {
	err := New().Struct(profile{FirstName: "A", Settings: settings{Timezone: "Mars/Olympus"}})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	msgs := Messages(verrs)
	assert.Equal(t, "Must be at least 2 characters", msgs["firstName"])
	assert.Equal(t, "Please select a valid timezone", msgs["settings.timezone"])
}

func TestCustomTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(profile{FirstName: "Ada", Settings: settings{Timezone: "Asia/Dhaka"}}))
	assert.NoError(t, v.Struct(profile{FirstName: "Ada", Password: "Asdf@123#"}))
	assert.Error(t, v.Struct(profile{FirstName: "Ada", Password: "asdf1234"}))
	assert.Error(t, v.Struct(profile{FirstName: "Ada", Password: "Asdf 123!"}))
}
