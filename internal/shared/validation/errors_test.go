package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_ErrAndMessage(t *testing.T) {
	t.Parallel()

	empty := Errors{}
	assert.NoError(t, empty.Err())

	errs := Errors{}
	errs.Add("password", "Password fields didn't match.")
	errs.Add("date", "Date has wrong format.")
	errs.Add("date", "Second problem.")

	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t,
		"validation failed: date: Date has wrong format.; Second problem., password: Password fields didn't match.",
		err.Error())
}

func TestAs(t *testing.T) {
	t.Parallel()

	errs := Errors{}
	errs.Add("status", "bad")
	wrapped := fmt.Errorf("create activity: %w", errs)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, []string{"bad"}, got["status"])

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

type bindTarget struct {
	ActivityType string `json:"activity_type" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"max=3"`
}

func TestFromBinding(t *testing.T) {
	t.Parallel()

	v := validator.New()
	err := v.Struct(bindTarget{Email: "not-an-email", Username: "toolong"})
	require.Error(t, err)

	got := FromBinding(err)
	assert.Equal(t, []string{"This field is required."}, got["activity_type"])
	assert.Equal(t, []string{"Enter a valid email address."}, got["email"])
	assert.Equal(t, []string{"Ensure this field has no more than 3 characters."}, got["username"])
}

func TestFromBinding_NonValidatorError(t *testing.T) {
	t.Parallel()

	got := FromBinding(errors.New("unexpected EOF"))
	assert.Equal(t, []string{"Invalid request body."}, got["non_field_errors"])
}

func TestToSnake(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ActivityType": "activity_type",
		"FirstName":    "first_name",
		"Password2":    "password2",
		"date":         "date",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}
