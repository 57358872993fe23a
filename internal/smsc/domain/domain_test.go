package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	testCases := []struct {
		name    string
		accName string
		number  string
		valid   bool
	}{
		{"valid", "number1", "+36991212321", true},
		{"name without number prefix", "phone1", "+36991212321", false},
		{"name without digits", "number", "+36991212321", false},
		{"number without plus", "number1", "36991212321", false},
		{"number too short", "number1", "+3699121232", false},
		{"number too long", "number1", "+369912123210", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc, err := NewAccount(tc.accName, tc.number)
			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, Account{Name: tc.accName, Number: tc.number}, acc)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateGroup(t *testing.T) {
	assert.NoError(t, ValidateGroup("group1", []string{"+3699123*"}))
	assert.NoError(t, ValidateGroup("group1", []string{"garbage", "+36"}), "one valid pattern accepts the batch")
	assert.ErrorIs(t, ValidateGroup("grp1", []string{"+3699123*"}), ErrValidation)
	assert.ErrorIs(t, ValidateGroup("group1", []string{"+3", "3699123*"}), ErrValidation)
	assert.ErrorIs(t, ValidateGroup("group1", nil), ErrValidation)
}

func TestParseDestination(t *testing.T) {
	assert.Equal(t, Broadcast(), ParseDestination([]string{"broadcast"}))
	assert.Equal(t, ToGroup("group1"), ParseDestination([]string{"group1", "number2"}))
	assert.Equal(t, DirectTo("number2", "number3"), ParseDestination([]string{"number2", "number3"}))
	assert.Equal(t, DestinationDirect, ParseDestination(nil).Kind)
}

func TestSplitPatterns(t *testing.T) {
	assert.Equal(t, []string{"+36991234321", "+3699123*"}, SplitPatterns("+36991234321, +3699123*,"))
	assert.Empty(t, SplitPatterns(""))
}

func TestWildcardHelpers(t *testing.T) {
	assert.True(t, IsWildcard("+3699123*"))
	assert.False(t, IsWildcard("+36991234321"))
	assert.Equal(t, "+3699123", PatternPrefix("+3699123*"))
}

func TestPendingDeliveryKey(t *testing.T) {
	key := DeliveryKey{Source: "+36991212321", Destination: "+36991234321", Message: "hi"}
	p := NewPendingDelivery(key, time.Now())
	assert.Equal(t, key, p.Key())
	assert.Equal(t, "+36991212321 -> +36991234321 : hi", key.String())
}
