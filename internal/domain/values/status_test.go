package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Status_Precedence(t *testing.T) {
	tests := []struct {
		status     Status
		precedence int
	}{
		{StatusError, 6},
		{StatusFail, 5},
		{StatusWarn, 4},
		{StatusInfo, 3},
		{StatusSkip, 2},
		{StatusPass, 1},
		{StatusDebug, 0},
		{Status("unknown"), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.precedence, tt.status.Precedence())
		})
	}
}

func Test_Status_Ordering(t *testing.T) {
	// worst-of selection relies on strict precedence ordering
	ordered := []Status{StatusDebug, StatusPass, StatusSkip, StatusInfo, StatusWarn, StatusFail, StatusError}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Precedence(), ordered[i-1].Precedence(),
			"%s should outrank %s", ordered[i], ordered[i-1])
	}
}

func Test_Status_Predicates(t *testing.T) {
	assert.True(t, StatusFail.IsFailure())
	assert.True(t, StatusError.IsFailure())
	assert.False(t, StatusWarn.IsFailure())
	assert.False(t, StatusPass.IsFailure())

	assert.True(t, StatusPass.IsSuccess())
	assert.False(t, StatusFail.IsSuccess())

	assert.True(t, StatusSkip.IsSkipped())
	assert.False(t, StatusPass.IsSkipped())
}

func Test_Status_Validate(t *testing.T) {
	valid := []Status{StatusPass, StatusFail, StatusWarn, StatusSkip, StatusError, StatusInfo, StatusDebug}
	for _, s := range valid {
		assert.NoError(t, s.Validate())
	}

	assert.Error(t, Status("bogus").Validate())
	assert.Error(t, Status("").Validate())
}
