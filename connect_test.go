package mmport_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/mmport"
	"github.com/lanikai/mmport/internal/testcomponent"
)

// newCoreOwnedPair builds an output/input pair whose modules both decline
// to manage their own connection, so Connect falls back to core
// ownership -- the scenario Enable's core-owned pool allocation and the
// connected-side forwarding callbacks exist to serve.
func newCoreOwnedPair(t *testing.T, comp *testcomponent.Component) (output, input *mmport.Port) {
	output = mmport.Alloc(comp, mmport.PortTypeOutput, 0, &mmport.Module{
		Enable:  func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Disable: func(port *mmport.Port) error { return nil },
		Send:    func(port *mmport.Port, buffer mmport.BufferHeader) error { return nil },
	})
	output.BufferNum, output.BufferNumMin = 4, 1
	output.BufferSize, output.BufferSizeMin = 1024, 1
	comp.AddOutput(output)

	input = mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{
		Enable:  func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Disable: func(port *mmport.Port) error { return nil },
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			port.BufferHeaderCallback(buffer)
			return nil
		},
	})
	input.BufferNum, input.BufferNumMin = 2, 1
	input.BufferSize, input.BufferSizeMin = 512, 1
	comp.AddInput(input)

	return output, input
}

func TestCoreOwnedConnectionUpgradesInputAndAllocatesPool(t *testing.T) {
	comp := newTestComponent(t)
	output, input := newCoreOwnedPair(t, comp)

	require.NoError(t, mmport.Connect(output, input))
	require.NoError(t, mmport.Enable(output, nil))

	assert.EqualValues(t, 4, input.BufferNum)
	assert.EqualValues(t, 1024, input.BufferSize)
	assert.True(t, input.IsEnabled)
	assert.True(t, output.IsEnabled)
}

func TestCoreOwnedConnectionForwardsCompletedBuffers(t *testing.T) {
	comp := newTestComponent(t)
	output, input := newCoreOwnedPair(t, comp)

	require.NoError(t, mmport.Connect(output, input))
	require.NoError(t, mmport.Enable(output, nil))

	pool := testcomponent.NewPool(1, 1024)
	buffer := pool.Queue().Get()
	require.NotNil(t, buffer)

	require.NoError(t, mmport.SendBuffer(output, buffer))
	output.BufferHeaderCallback(buffer)

	// The buffer was forwarded to input and completed there
	// synchronously, then released back into the test pool it was drawn
	// from by connectedInputCB.
	assert.Eventually(t, func() bool {
		rx := mmport.CoreStatisticsParam{Dir: mmport.StatsDirRX}
		return mmport.ParameterGet(input, &rx) == nil && rx.Stats.BufferCount == 1
	}, time.Second, time.Millisecond)
}

func TestFormatChangedEventIsCommittedBeforeForwarding(t *testing.T) {
	comp := newTestComponent(t)

	output := mmport.Alloc(comp, mmport.PortTypeOutput, 0, &mmport.Module{
		Enable:    func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Disable:   func(port *mmport.Port) error { return nil },
		Send:      func(port *mmport.Port, buffer mmport.BufferHeader) error { return nil },
		SetFormat: func(port *mmport.Port) error { return nil },
	})
	output.BufferNum, output.BufferNumMin = 2, 1
	output.BufferSize, output.BufferSizeMin = 256, 1
	comp.AddOutput(output)

	var received *mmport.Format
	input := mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{
		Enable:  func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Disable: func(port *mmport.Port) error { return nil },
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			received = buffer.(mmport.FormatEventBuffer).EventFormat()
			return nil
		},
	})
	input.BufferNum, input.BufferNumMin = 2, 1
	input.BufferSize, input.BufferSizeMin = 256, 1
	comp.AddInput(input)

	require.NoError(t, mmport.Connect(output, input))
	require.NoError(t, mmport.Enable(output, nil))

	newFormat := mmport.NewFormat()
	newFormat.Type = mmport.MediaTypeVideo
	newFormat.Encoding = mmport.FourCC{'H', '2', '6', '4'}

	event, err := mmport.EventGet(output, mmport.CmdFormatChanged)
	require.NoError(t, err)
	eventBuf := event.(mmport.FormatEventBuffer)
	eventBuf.SetEventFormat(newFormat)

	output.BufferHeaderCallback(event)

	assert.Equal(t, mmport.MediaTypeVideo, output.Format.Type)
	assert.Equal(t, "H264", output.Format.Encoding.String())
	require.NotNil(t, received)
	assert.Equal(t, "H264", received.Encoding.String())
}

func TestFormatChangedCommitFailureRaisesComponentError(t *testing.T) {
	comp := newTestComponent(t)

	output := mmport.Alloc(comp, mmport.PortTypeOutput, 0, &mmport.Module{
		Enable:    func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Disable:   func(port *mmport.Port) error { return nil },
		Send:      func(port *mmport.Port, buffer mmport.BufferHeader) error { return nil },
		SetFormat: func(port *mmport.Port) error { return mmport.ErrInvalid },
	})
	output.BufferNum, output.BufferNumMin = 2, 1
	output.BufferSize, output.BufferSizeMin = 256, 1
	comp.AddOutput(output)

	input := mmport.Alloc(comp, mmport.PortTypeInput, 0, &mmport.Module{
		Enable:  func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Disable: func(port *mmport.Port) error { return nil },
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			port.BufferHeaderCallback(buffer)
			return nil
		},
	})
	input.BufferNum, input.BufferNumMin = 2, 1
	input.BufferSize, input.BufferSizeMin = 256, 1
	comp.AddInput(input)

	require.NoError(t, mmport.Connect(output, input))
	require.NoError(t, mmport.Enable(output, nil))

	event, err := mmport.EventGet(output, mmport.CmdFormatChanged)
	require.NoError(t, err)
	event.(mmport.FormatEventBuffer).SetEventFormat(mmport.NewFormat())

	output.BufferHeaderCallback(event)

	assert.Error(t, comp.LastError())
}

func TestConnectToAlreadyConnectedPortReturnsAlreadyConnectedSentinel(t *testing.T) {
	comp := newTestComponent(t)
	output, input := newCoreOwnedPair(t, comp)
	require.NoError(t, mmport.Connect(output, input))

	other := mmport.Alloc(comp, mmport.PortTypeInput, 1, &mmport.Module{})
	err := mmport.Connect(output, other)
	assert.True(t, errors.Is(err, mmport.ErrAlreadyConnected))

	otherOutput := mmport.Alloc(comp, mmport.PortTypeOutput, 1, &mmport.Module{})
	err = mmport.Connect(otherOutput, input)
	assert.True(t, errors.Is(err, mmport.ErrAlreadyConnected))
}

func TestConnectWhileEitherPortEnabledReturnsInvalidSentinel(t *testing.T) {
	comp := newTestComponent(t)
	output, input := newCoreOwnedPair(t, comp)
	require.NoError(t, mmport.Enable(output, func(port *mmport.Port, buffer mmport.BufferHeader) {}))

	err := mmport.Connect(output, input)
	assert.True(t, errors.Is(err, mmport.ErrInvalid))
}
