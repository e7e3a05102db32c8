package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type guest struct {
	Name  string `validate:"required"`
	Email string `validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(guest{Name: "Rina"}))
	assert.Nil(t, Struct(guest{Name: "Rina", Email: "rina@example.com"}))

	errs := Struct(guest{Email: "nope"})
	assert.Equal(t, "required", errs["Name"])
	assert.Equal(t, "email", errs["Email"])
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("a@b.co"))
	assert.False(t, Email("a@"))
	assert.False(t, Email(""))
}
