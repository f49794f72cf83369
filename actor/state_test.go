package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateBox_ValidTransitionSucceeds(t *testing.T) {
	b := newStateBox(Created)
	assert.NoError(t, b.transition(Starting, Created))
	assert.Equal(t, Starting, b.load())
}

func TestStateBox_InvalidTransitionReturnsSentinel(t *testing.T) {
	b := newStateBox(Created)
	err := b.transition(Running, Starting)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Equal(t, Created, b.load(), "state must be unchanged after a rejected transition")
}

func TestStateBox_TransitionAcceptsMultipleFromStates(t *testing.T) {
	b := newStateBox(Starting)
	assert.NoError(t, b.transition(Stopping, Running, Starting, Created))
	assert.Equal(t, Stopping, b.load())
}

func TestConfig_ValidateRejectsNonPowerOfTwoCapacities(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MailboxCapacity = 100
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
