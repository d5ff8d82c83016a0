package mmport_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/mmport"
	"github.com/lanikai/mmport/internal/testcomponent"
)

func newTestComponent(t *testing.T) *testcomponent.Component {
	return testcomponent.New(t.Name(), 8, nil)
}

func newSendCountingOutput(t *testing.T, comp *testcomponent.Component) *mmport.Port {
	port := mmport.Alloc(comp, mmport.PortTypeOutput, 0, &mmport.Module{
		Enable: func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			return nil
		},
		Disable: func(port *mmport.Port) error { return nil },
	})
	port.BufferNum, port.BufferNumMin = 4, 1
	port.BufferSize, port.BufferSizeMin = 1024, 1
	comp.AddOutput(port)
	return port
}

func TestSendThenCompleteInvokesCallbackAndSettlesStats(t *testing.T) {
	comp := newTestComponent(t)
	output := newSendCountingOutput(t, comp)

	var mu sync.Mutex
	var invocations int
	require.NoError(t, mmport.Enable(output, func(port *mmport.Port, buffer mmport.BufferHeader) {
		mu.Lock()
		invocations++
		mu.Unlock()
	}))

	pool := testcomponent.NewPool(4, 1024)
	buffers := make([]mmport.BufferHeader, 4)
	for i := range buffers {
		buffers[i] = pool.Queue().Get()
		require.NotNil(t, buffers[i])
		require.NoError(t, mmport.SendBuffer(output, buffers[i]))
	}

	assert.EqualValues(t, 4, output.InTransit())

	for _, b := range buffers {
		output.BufferHeaderCallback(b)
	}

	assert.EqualValues(t, 0, output.InTransit())
	assert.Equal(t, 4, invocations)

	var tx, rx mmport.CoreStatisticsParam
	tx.Dir, rx.Dir = mmport.StatsDirTX, mmport.StatsDirRX
	require.NoError(t, mmport.ParameterGet(output, &tx))
	require.NoError(t, mmport.ParameterGet(output, &rx))
	assert.EqualValues(t, 4, tx.Stats.BufferCount)
	assert.EqualValues(t, 4, rx.Stats.BufferCount)
}

func TestDisableWaitsForBuffersInTransit(t *testing.T) {
	comp := newTestComponent(t)
	output := newSendCountingOutput(t, comp)

	require.NoError(t, mmport.Enable(output, func(port *mmport.Port, buffer mmport.BufferHeader) {}))

	pool := testcomponent.NewPool(4, 1024)
	buffers := make([]mmport.BufferHeader, 4)
	for i := range buffers {
		buffers[i] = pool.Queue().Get()
		require.NoError(t, mmport.SendBuffer(output, buffers[i]))
	}

	// Return two of the four immediately; the other two return from a
	// background goroutine shortly after Disable starts waiting.
	output.BufferHeaderCallback(buffers[0])
	output.BufferHeaderCallback(buffers[1])

	go func() {
		output.BufferHeaderCallback(buffers[2])
		output.BufferHeaderCallback(buffers[3])
	}()

	require.NoError(t, mmport.Disable(output))
	assert.False(t, output.IsEnabled)
	assert.EqualValues(t, 0, output.InTransit())
}

func TestConnectedPortsAreMutuallyVisible(t *testing.T) {
	comp := newTestComponent(t)
	output := newSendCountingOutput(t, comp)
	input := mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			port.BufferHeaderCallback(buffer)
			return nil
		},
	})
	input.BufferNum, input.BufferNumMin = 4, 1
	input.BufferSize, input.BufferSizeMin = 1024, 1
	comp.AddInput(input)

	require.NoError(t, mmport.Connect(output, input))
	require.NoError(t, mmport.Disconnect(output))

	// Disconnecting an already-disconnected port is rejected, and the
	// ports are free to form a fresh connection (the round trip restored
	// both ports to their pre-connection state).
	assert.Error(t, mmport.Disconnect(output))
	assert.NoError(t, mmport.Connect(output, input))
}

func TestDoubleConnectIsRejected(t *testing.T) {
	comp := newTestComponent(t)
	a := newSendCountingOutput(t, comp)
	b := mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{})
	c := mmport.Alloc(comp, mmport.PortTypeInput, 1, &mmport.Module{})
	d := mmport.Alloc(comp, mmport.PortTypeOutput, 1, &mmport.Module{})

	require.NoError(t, mmport.Connect(a, b))
	assert.Error(t, mmport.Connect(a, c))
	assert.Error(t, mmport.Connect(d, b))
}

func TestConnectWhileEnabledIsRejected(t *testing.T) {
	comp := newTestComponent(t)
	a := newSendCountingOutput(t, comp)
	b := mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{})

	require.NoError(t, mmport.Enable(a, func(port *mmport.Port, buffer mmport.BufferHeader) {}))
	assert.Error(t, mmport.Connect(a, b))
}

func TestFormatCommitClampsBufferMinimaAcrossOutputs(t *testing.T) {
	comp := newTestComponent(t)
	input := mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{
		SetFormat: func(port *mmport.Port) error { return nil },
	})
	comp.AddInput(input)

	out1 := mmport.Alloc(comp, mmport.PortTypeOutput, 0, &mmport.Module{})
	out1.BufferNumMin, out1.BufferSizeMin = 4, 2048
	out1.BufferNum, out1.BufferSize = 1, 1
	comp.AddOutput(out1)

	require.NoError(t, mmport.FormatCommit(input))

	assert.EqualValues(t, 4, out1.BufferNum)
	assert.EqualValues(t, 2048, out1.BufferSize)
}

func TestFormatCommitDetectsOverwrittenFormatPointer(t *testing.T) {
	comp := newTestComponent(t)
	port := mmport.Alloc(comp, mmport.PortTypeOutput, 0, &mmport.Module{
		SetFormat: func(port *mmport.Port) error { return nil },
	})

	original := port.Format
	port.Format = mmport.NewFormat()

	err := mmport.FormatCommit(port)
	assert.Equal(t, mmport.ErrFault, err)
	assert.True(t, original == port.Format)
}
