package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Kind     string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestStruct_CollectsFieldErrors(t *testing.T) {
	v := New()
	err := v.Struct(signup{Email: "nope", Password: "123", Kind: "c"})
	ve, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "must be a valid email", ve["email"])
	require.Equal(t, "must be at least 6 characters", ve["password"])
	require.Contains(t, ve["kind"], "one of")
}

func TestStruct_OK(t *testing.T) {
	require.NoError(t, New().Struct(signup{Email: "a@b.co", Password: "secret"}))
}

func TestErrors_ErrAndWrap(t *testing.T) {
	require.NoError(t, Errors{}.Err())

	err := fmt.Errorf("create: %w", Errors{}.Add("end", "must be after start"))
	ve, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "must be after start", ve["end"])
	require.Contains(t, err.Error(), "end: must be after start")
}
