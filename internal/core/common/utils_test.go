package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scored struct {
	Score int      `json:"score"`
	Notes []string `json:"notes"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     scored
	}{
		{"bare", `{"score": 80, "notes": ["ok"]}`, scored{80, []string{"ok"}}},
		{"fenced", "```json\n{\"score\": 55}\n```", scored{Score: 55}},
		{"prose around", "Here you go: {\"score\": 12} hope it helps", scored{Score: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[scored](tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON_Errors(t *testing.T) {
	_, err := ParseJSON[scored]("no json here")
	assert.True(t, errors.Is(err, ErrNoJSON))

	_, err = ParseJSON[scored](`{"score": "high"}`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}
