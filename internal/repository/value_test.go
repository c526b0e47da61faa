package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAbsent(t *testing.T) {
	var nilString *string
	empty := ""
	zero := 0
	name := "Chess"

	tests := []struct {
		name   string
		value  any
		absent bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"zero int", 0, true},
		{"zero int64", int64(0), true},
		{"zero float", 0.0, true},
		{"false", false, true},
		{"zero time", time.Time{}, true},
		{"nil pointer", nilString, true},
		{"pointer to empty string", &empty, true},
		{"pointer to zero", &zero, true},
		{"text", "Chess", false},
		{"pointer to text", &name, false},
		{"positive int", 3, false},
		{"negative int", -1, false},
		{"true", true, false},
		{"time", time.Now(), false},
		{"slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.absent, IsAbsent(tt.value))
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		input any
		want  any
		ok    bool
	}{
		{"string stays", KindString, "abc", "abc", true},
		{"int for string filter rejected", KindString, 5, nil, false},
		{"int from text", KindInt, " 42 ", int64(42), true},
		{"int zero from text", KindInt, "0", int64(0), true},
		{"int from float", KindInt, float64(7), int64(7), true},
		{"int from fraction rejected", KindInt, 7.5, nil, false},
		{"int garbage rejected", KindInt, "four", nil, false},
		{"blank int is blank", KindInt, "  ", "", true},
		{"float from text", KindFloat, "1.5", 1.5, true},
		{"bool from text", KindBool, "true", true, true},
		{"bool false from text", KindBool, "false", false, true},
		{"bool garbage rejected", KindBool, "maybe", nil, false},
		{"date from text", KindTime, "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"time garbage rejected", KindTime, "yesterday", nil, false},
		{"nil passes", KindInt, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerce(tt.kind, tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "abc", normalize(KindString, []byte("abc")))
	assert.Equal(t, int64(3), normalize(KindInt, int64(3)))
	assert.Equal(t, int64(3), normalize(KindInt, "3"))
	assert.Equal(t, true, normalize(KindBool, int64(1)))
	assert.Equal(t, false, normalize(KindBool, int64(0)))
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), normalize(KindTime, "2024-01-01 12:00:00"))
	assert.Nil(t, normalize(KindInt, nil))
}
