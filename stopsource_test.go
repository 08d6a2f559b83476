// SPDX-License-Identifier: GPL-3.0-or-later

package rtcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopSourceRequestStopInvokesCallbacks(t *testing.T) {
	s := NewStopSource()
	token := s.Token()
	assert.False(t, token.Requested())

	var fired int
	token.OnStop(func() { fired++ })
	token.OnStop(func() { fired++ })

	s.RequestStop()
	assert.Equal(t, 2, fired)
	assert.True(t, token.Requested())

	s.RequestStop() // idempotent
	assert.Equal(t, 2, fired)
}

func TestStopSourceRegisterAfterRequestFiresImmediately(t *testing.T) {
	s := NewStopSource()
	s.RequestStop()

	fired := false
	s.Token().OnStop(func() { fired = true })
	assert.True(t, fired)
}

func TestStopCallbackCancelPreventsInvocation(t *testing.T) {
	s := NewStopSource()
	fired := false
	cb := s.Token().OnStop(func() { fired = true })
	cb.Cancel()

	s.RequestStop()
	assert.False(t, fired)
}

func TestZeroStopTokenNeverRequested(t *testing.T) {
	var tok StopToken
	assert.False(t, tok.Requested())
	require.NotPanics(t, func() {
		tok.OnStop(func() {})
	})
}
