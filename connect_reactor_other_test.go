//go:build !linux && !windows

// SPDX-License-Identifier: GPL-3.0-or-later

package rtcore

import (
	"testing"

	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewConnectFunc substitutes a [*ReactorDialer] for [Config.Dialer] once
// [Config.Reactor] is set, and records the Reactor on the returned
// [*ConnectFunc] so callers can tell which dial path is active.
func TestNewConnectFuncWiresReactorDialer(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{}
	reactor := NewPortableReactor()
	cfg.Reactor = reactor

	fn := NewConnectFunc(cfg, "tcp", DefaultSLogger())

	require.Same(t, reactor, fn.Reactor)
	rd, ok := fn.Dialer.(*ReactorDialer)
	require.True(t, ok, "Dialer should have been substituted with a *ReactorDialer")
	assert.Same(t, reactor, rd.Reactor)
	assert.Same(t, cfg.Dialer, rd.Dialer)
}
