package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:   	Fetch sample traces from a reader over a serial port.
 *
 * Description:	The reader is a USB CDC device, so it shows up as an
 *		ordinary tty.  The request is a single 'S' followed by
 *		the number of bytes wanted as a little endian uint32.
 *		The reader answers with exactly that many bytes of
 *		packed samples, most significant bit first, then goes
 *		quiet.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/pkg/term"
)

// Transport is anything that can hand over a block of raw sample bytes.
type Transport interface {
	Acquire(ctx context.Context, n int, timeout time.Duration) ([]byte, error)
	Close() error
}

type SerialTransport struct {
	name string
	fd   *term.Term
}

// Each read waits at most this long so that cancellation is noticed.
const serialPollInterval = 100 * time.Millisecond

/*-------------------------------------------------------------------
 *
 * Name:	OpenSerial
 *
 * Purpose:	Open the reader's serial port.
 *
 * Inputs:	devicename	- Usually /dev/ttyACM0 on Linux.
 *
 *		baud		- Speed.  0 leaves it alone.  The reader
 *				  ignores it, but some USB serial bridges
 *				  do not.
 *
 *---------------------------------------------------------------*/

func OpenSerial(devicename string, baud int) (*SerialTransport, error) {
	var opts = []func(*term.Term) error{term.RawMode}

	switch baud {
	case 0: /* Leave it alone. */
	case 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600:
		opts = append(opts, term.Speed(baud))
	default:
		return nil, demodErr("OpenSerial", ErrInvalidArgument, "unsupported speed %d", baud)
	}

	var fd, err = term.Open(devicename, opts...)
	if err != nil {
		return nil, demodErr("OpenSerial", ErrInvalidArgument, "could not open serial port %s: %s", devicename, err)
	}

	return &SerialTransport{name: devicename, fd: fd}, nil
}

func (s *SerialTransport) Name() string {
	return s.name
}

/*-------------------------------------------------------------------
 *
 * Name:	Acquire
 *
 * Purpose:	Ask the reader for n bytes of samples and wait for them.
 *
 * Returns:	Exactly n bytes, or an error.  ErrTimeout if the
 *		reader stopped sending before n bytes arrived.
 *
 *---------------------------------------------------------------*/

func (s *SerialTransport) Acquire(ctx context.Context, n int, timeout time.Duration) ([]byte, error) {
	const op = "Acquire"

	if n <= 0 || timeout <= 0 {
		return nil, demodErr(op, ErrInvalidArgument, "%d bytes, timeout %s", n, timeout)
	}

	var cmd = make([]byte, 5)
	cmd[0] = 'S'
	binary.LittleEndian.PutUint32(cmd[1:], uint32(n))

	var written, err = s.fd.Write(cmd)
	if err != nil || written != len(cmd) {
		return nil, demodErr(op, ErrInvalidArgument, "write to %s failed: %v", s.name, err)
	}

	var buf = make([]byte, n)
	var got = 0
	var deadline = time.Now().Add(timeout)

	for got < n {
		if ctx.Err() != nil {
			return nil, demodErr(op, ErrTimeout, "%s after %d of %d bytes", ctx.Err(), got, n)
		}

		var remaining = time.Until(deadline)
		if remaining <= 0 {
			return nil, demodErr(op, ErrTimeout, "%d of %d bytes from %s", got, n, s.name)
		}

		if err := s.fd.SetReadTimeout(min(remaining, serialPollInterval)); err != nil {
			return nil, demodErr(op, ErrInvalidArgument, "read timeout on %s: %s", s.name, err)
		}

		var count, readErr = s.fd.Read(buf[got:])
		got += count

		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, demodErr(op, ErrInvalidArgument, "read from %s: %s", s.name, readErr)
		}

		// Data resets the clock; the timeout is for a reader that has gone quiet.
		if count > 0 {
			deadline = time.Now().Add(timeout)
		}
	}

	return buf, nil
}

func (s *SerialTransport) Close() error {
	if s == nil || s.fd == nil {
		return nil
	}

	return s.fd.Close()
}

/*-------------------------------------------------------------------
 *
 * Name:	UnpackSamples
 *
 * Purpose:	Turn packed reader bytes back into signed samples.
 *
 * Inputs:	raw		- Bytes from the reader.
 *		bitsPerSample	- 1, 2, 4 or 8.
 *		n		- Samples wanted; 0 for as many as fit.
 *
 * Description:	Narrow samples are widened back to 8 bits by shifting
 *		them up, then the reader's unsigned 0..255 becomes
 *		-127..127 around 127.
 *
 *---------------------------------------------------------------*/

func UnpackSamples(raw []byte, bitsPerSample int, n int) ([]int, error) {
	switch bitsPerSample {
	case 1, 2, 4, 8:
	default:
		return nil, demodErr("UnpackSamples", ErrInvalidArgument, "bits per sample %d", bitsPerSample)
	}

	var avail = len(raw) * 8 / bitsPerSample
	if n == 0 {
		n = avail
	}

	if n > avail {
		return nil, demodErr("UnpackSamples", ErrInsufficientData, "%d bytes hold %d samples, need %d", len(raw), avail, n)
	}

	var out = make([]int, n)
	var mask = 1<<bitsPerSample - 1

	for i := range n {
		var bit = i * bitsPerSample
		var v = int(raw[bit/8]) >> (8 - bitsPerSample - bit%8) & mask

		out[i] = clampSample(v<<(8-bitsPerSample) - 127)
	}

	return out, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	AcquireSamples
 *
 * Purpose:	Fill the trace from a reader.
 *
 * Description:	The trace is replaced only once every sample has
 *		arrived, so a timeout leaves the previous trace intact.
 *
 *---------------------------------------------------------------*/

func (ctx *DecodeContext) AcquireSamples(reqCtx context.Context, t Transport, n int) error {
	var bps = ctx.Config.Device.BitsPerSample
	if n <= 0 || n > MaxSampleCount {
		return demodErr("AcquireSamples", ErrInvalidArgument, "%d samples, limit %d", n, MaxSampleCount)
	}

	var raw, err = t.Acquire(reqCtx, (n*bps+7)/8, ctx.Config.Device.Timeout)
	if err != nil {
		ctx.Log.Warn("acquire failed", "err", err)
		return err
	}

	var samples, unpackErr = UnpackSamples(raw, bps, n)
	if unpackErr != nil {
		return unpackErr
	}

	ctx.LoadSamples(samples)
	ctx.Log.Info("samples acquired", "count", n, "bits_per_sample", bps)

	return nil
}

/* end serial_port.go */
