package lfdemod

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader answers one sample request on the master side of a pty.
func fakeReader(t *testing.T, ptmx *os.File, reply []byte) <-chan uint32 {
	t.Helper()

	var requested = make(chan uint32, 1)

	go func() {
		var cmd = make([]byte, 5)
		if _, err := io.ReadFull(ptmx, cmd); err != nil || cmd[0] != 'S' {
			close(requested)
			return
		}

		requested <- binary.LittleEndian.Uint32(cmd[1:])

		_, _ = ptmx.Write(reply)
	}()

	return requested
}

func openTestPty(t *testing.T) (*os.File, *SerialTransport) {
	t.Helper()

	var ptmx, tty, err = pty.Open()
	require.NoError(t, err)

	t.Cleanup(func() {
		ptmx.Close()
		tty.Close()
	})

	var port, openErr = OpenSerial(tty.Name(), 0)
	require.NoError(t, openErr)

	t.Cleanup(func() { port.Close() })

	return ptmx, port
}

func TestSerialTransport_Acquire(t *testing.T) {
	var ptmx, port = openTestPty(t)

	var reply = make([]byte, 300)
	for i := range reply {
		reply[i] = byte(i)
	}

	var requested = fakeReader(t, ptmx, reply)

	var got, err = port.Acquire(context.Background(), len(reply), 2*time.Second)
	require.NoError(t, err)

	assert.Equal(t, uint32(len(reply)), <-requested)
	assert.Equal(t, reply, got)
}

func TestSerialTransport_AcquireTimeout(t *testing.T) {
	var ptmx, port = openTestPty(t)

	fakeReader(t, ptmx, []byte{1, 2, 3})

	var start = time.Now()
	var _, err = port.Acquire(context.Background(), 10, 300*time.Millisecond)

	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSerialTransport_AcquireCancel(t *testing.T) {
	var _, port = openTestPty(t)

	var reqCtx, cancel = context.WithCancel(context.Background())
	cancel()

	var _, err = port.Acquire(reqCtx, 10, time.Minute)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestOpenSerial_BadArguments(t *testing.T) {
	var _, err = OpenSerial("/dev/null", 1234)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = OpenSerial("/nonexistent/ttyACM9", 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUnpackSamples(t *testing.T) {
	var got, err = UnpackSamples([]byte{0, 127, 255}, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{-127, 0, 127}, got)

	// 0xF0: 15 then 0, widened to 240 and 0.
	got, err = UnpackSamples([]byte{0xF0, 0x80}, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{113, -127, 1}, got)

	got, err = UnpackSamples([]byte{0xA0}, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, -127, 1, -127}, got)

	_, err = UnpackSamples([]byte{0xA0}, 1, 9)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = UnpackSamples([]byte{0xA0}, 3, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

type stubTransport struct {
	reply []byte
	err   error
	asked int
}

func (s *stubTransport) Acquire(_ context.Context, n int, _ time.Duration) ([]byte, error) {
	s.asked = n
	return s.reply, s.err
}

func (s *stubTransport) Close() error {
	return nil
}

func TestAcquireSamples(t *testing.T) {
	var ctx = newTestContext([]int{5, 5, 5})
	ctx.Config.Device.BitsPerSample = 4

	var stub = &stubTransport{reply: []byte{0xF0, 0xF0}}

	require.NoError(t, ctx.AcquireSamples(context.Background(), stub, 3))
	assert.Equal(t, 2, stub.asked)
	assert.Equal(t, []int{113, -127, 113}, ctx.Samples.Samples())
}

func TestAcquireSamples_KeepsTraceOnFailure(t *testing.T) {
	var ctx = newTestContext([]int{5, 6, 7})

	var stub = &stubTransport{err: demodErr("Acquire", ErrTimeout, "quiet")}

	var err = ctx.AcquireSamples(context.Background(), stub, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, []int{5, 6, 7}, ctx.Samples.Samples())

	err = ctx.AcquireSamples(context.Background(), stub, MaxSampleCount+1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
