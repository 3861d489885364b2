package coroio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coroio/coroio/reactor"
)

func TestState_InterestFor(t *testing.T) {
	const tokA reactor.Token = 1
	const tokB reactor.Token = 2

	tests := []struct {
		name  string
		state State
		query reactor.Token
		want  reactor.IOEvents
	}{
		{"blocked on read, matching token", BlockedOnRead(tokA), tokA, reactor.EventReadable},
		{"blocked on read, other token", BlockedOnRead(tokA), tokB, 0},
		{"blocked on write, matching token", BlockedOnWrite(tokA), tokA, reactor.EventWritable},
		{"blocked on write, other token", BlockedOnWrite(tokA), tokB, 0},
		{"finished", Finished(), tokA, reactor.EventHup},
		{"running is a contract violation, reports no interest", Running(), tokA, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.InterestFor(tt.query))
		})
	}
}

func TestState_Constructors(t *testing.T) {
	assert.Equal(t, KindRunning, Running().Kind)
	assert.Equal(t, KindBlockedOnRead, BlockedOnRead(7).Kind)
	assert.Equal(t, reactor.Token(7), BlockedOnRead(7).Token)
	assert.Equal(t, KindBlockedOnWrite, BlockedOnWrite(9).Kind)
	assert.Equal(t, reactor.Token(9), BlockedOnWrite(9).Token)
	assert.Equal(t, KindFinished, Finished().Kind)
}

func TestIOEvents_IsHup(t *testing.T) {
	assert.True(t, reactor.EventHup.IsHup())
	assert.True(t, (reactor.EventReadable | reactor.EventHup).IsHup())
	assert.False(t, reactor.EventReadable.IsHup())
	assert.False(t, reactor.IOEvents(0).IsHup())
}
