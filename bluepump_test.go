package bluepump

import (
	"testing"
	"time"

	"github.com/aurelab/bluepump/audio"
	"github.com/aurelab/bluepump/config"
	"github.com/aurelab/bluepump/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "AA:BB:CC:DD:EE:FF"

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	d, err := New(config.Default(), nil)
	require.NoError(t, err)
	return d
}

func mustCodec(t *testing.T, f audio.Format) audio.Codec {
	t.Helper()
	c, err := audio.NewTransparent(f)
	require.NoError(t, err)
	return c
}

func TestNewDaemon(t *testing.T) {
	d := newTestDaemon(t)
	defer d.Shutdown()

	assert.Equal(t, 1, d.Adapters().Len())
	a, err := d.Adapters().Get(0)
	require.NoError(t, err)
	assert.Equal(t, "hci0", a.Name())
	assert.Empty(t, d.Transports())
}

func TestNewDaemonInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Adapters = nil
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestConnectDisconnectTransport(t *testing.T) {
	d := newTestDaemon(t)
	defer d.Shutdown()

	codec := mustCodec(t, audio.CD44100Stereo)
	backend := transport.NewPipeBackend(0)

	tr, err := d.ConnectTransport(0, testAddr, transport.ProfileA2DPSource,
		codec, audio.CD44100Stereo, backend)
	require.NoError(t, err)
	assert.Len(t, d.Transports(), 1)

	// A second identical connection is refused.
	_, err = d.ConnectTransport(0, testAddr, transport.ProfileA2DPSource,
		codec, audio.CD44100Stereo, backend)
	assert.ErrorIs(t, err, ErrTransportExists)

	// The device exists while its transport does.
	a, err := d.Adapters().Get(0)
	require.NoError(t, err)
	require.NotNil(t, a.Devices().Lookup(testAddr))
	assert.Equal(t, 1, a.Devices().Lookup(testAddr).TransportCount())

	require.NoError(t, d.DisconnectTransport(testAddr, transport.ProfileA2DPSource, codec))
	assert.Equal(t, transport.StateTerminated, tr.State())
	assert.Nil(t, a.Devices().Lookup(testAddr), "last transport takes the device with it")

	err = d.DisconnectTransport(testAddr, transport.ProfileA2DPSource, codec)
	assert.ErrorIs(t, err, ErrTransportNotFound)
}

func TestConnectTransportUnknownAdapter(t *testing.T) {
	d := newTestDaemon(t)
	defer d.Shutdown()

	codec := mustCodec(t, audio.Voice8000Mono)
	_, err := d.ConnectTransport(7, testAddr, transport.ProfileSCO,
		codec, audio.Voice8000Mono, transport.NewPipeBackend(0))
	assert.Error(t, err)

	// The failed connect must not leak a device reference.
	a, err := d.Adapters().Get(0)
	require.NoError(t, err)
	assert.Nil(t, a.Devices().Lookup(testAddr))
}

func TestTwoTransportsShareDevice(t *testing.T) {
	d := newTestDaemon(t)
	defer d.Shutdown()

	a2dp := mustCodec(t, audio.CD44100Stereo)
	sco := mustCodec(t, audio.Voice16000Mono)

	_, err := d.ConnectTransport(0, testAddr, transport.ProfileA2DPSource,
		a2dp, audio.CD44100Stereo, transport.NewPipeBackend(0))
	require.NoError(t, err)
	_, err = d.ConnectTransport(0, testAddr, transport.ProfileSCO,
		sco, audio.Voice16000Mono, transport.NewPipeBackend(0))
	require.NoError(t, err)

	a, err := d.Adapters().Get(0)
	require.NoError(t, err)
	dev := a.Devices().Lookup(testAddr)
	require.NotNil(t, dev)
	assert.Equal(t, 2, dev.TransportCount())

	// Dropping one transport keeps the device for the other.
	require.NoError(t, d.DisconnectTransport(testAddr, transport.ProfileA2DPSource, a2dp))
	assert.NotNil(t, a.Devices().Lookup(testAddr))
	assert.Equal(t, 1, dev.TransportCount())
}

func TestShutdownDestroysEverything(t *testing.T) {
	d := newTestDaemon(t)

	codec := mustCodec(t, audio.Voice16000Mono)
	tr, err := d.ConnectTransport(0, testAddr, transport.ProfileSCO,
		codec, audio.Voice16000Mono, transport.NewPipeBackend(0))
	require.NoError(t, err)
	require.NoError(t, tr.Acquire())

	done := make(chan struct{})
	go func() {
		d.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	assert.Equal(t, transport.StateTerminated, tr.State())
	assert.Empty(t, d.Transports())
	assert.Equal(t, 0, d.Adapters().Len())

	// Shutdown is idempotent and further connects are refused.
	d.Shutdown()
	_, err = d.ConnectTransport(0, testAddr, transport.ProfileSCO,
		codec, audio.Voice16000Mono, transport.NewPipeBackend(0))
	assert.ErrorIs(t, err, ErrDaemonClosed)
}

func TestMultipleIndependentDaemons(t *testing.T) {
	d1 := newTestDaemon(t)
	defer d1.Shutdown()
	d2 := newTestDaemon(t)
	defer d2.Shutdown()

	codec := mustCodec(t, audio.Voice8000Mono)
	_, err := d1.ConnectTransport(0, testAddr, transport.ProfileA2DPSource,
		codec, audio.Voice8000Mono, transport.NewPipeBackend(0))
	require.NoError(t, err)

	assert.Len(t, d1.Transports(), 1)
	assert.Empty(t, d2.Transports(), "daemons share no ambient state")
}
