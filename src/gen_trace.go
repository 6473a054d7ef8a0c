package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Write a synthetic trace file.
 *
 * Description:	Handy for trying the demodulators without a reader, and
 *		for reproducing a problem with a known bit pattern.
 *
 *			gen_trace -m man -c 32 --em410x 0123456789 -r 3 -o em.pm3
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// GenTrace encodes bits with the named modulation.
func GenTrace(mod string, bits []uint8, clk int, fcHigh int, fcLow int, amp int) ([]int, error) {
	switch strings.ToLower(mod) {
	case "ask", "nrz":
		return GenNRZ(bits, clk, amp), nil
	case "man", "manchester":
		return GenManchester(bits, clk, amp), nil
	case "biphase":
		return GenBiphase(bits, clk, amp), nil
	case "fsk":
		return GenFSK(bits, clk, fcHigh, fcLow, amp)
	case "psk1":
		return GenPSK1(bits, clk, fcLow, amp)
	case "psk2":
		return GenPSK2(bits, clk, fcLow, amp)
	case "psk3":
		return GenPSK3(bits, clk, fcLow, amp)
	}

	return nil, demodErr("GenTrace", ErrInvalidArgument, "unknown modulation %q", mod)
}

func GenTraceMain() {
	var modulation = pflag.StringP("modulation", "m", "man", "One of ask, nrz, man, biphase, fsk, psk1, psk2, psk3.")
	var clock = pflag.IntP("clock", "c", 32, "Samples per bit.")
	var fcHigh = pflag.IntP("fc-high", "f", 10, "FSK: longer field clock, used for 0 bits.")
	var fcLow = pflag.IntP("fc-low", "l", 8, "FSK: shorter field clock, used for 1 bits.  PSK: carrier.")
	var amplitude = pflag.IntP("amplitude", "a", 100, "Peak amplitude, 1 - 127.")
	var repeat = pflag.IntP("repeat", "r", 1, "Send the bits this many times.")
	var em410x = pflag.StringP("em410x", "e", "", "Send the frame for this 10 hex digit EM410x ID.")
	var terminator = pflag.BoolP("terminator", "S", false, "Put a sequence terminator after each repeat.  man and biphase only.")
	var outputFile = pflag.StringP("output-file", "o", "", "Write to this file rather than stdout.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [bits]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	var bits []uint8

	if *em410x != "" {
		var id, err = strconv.ParseUint(*em410x, 16, 40)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid EM410x ID %q: %s\n", *em410x, err)
			os.Exit(1)
		}

		bits = EncodeEM410x(id)
	} else {
		if pflag.NArg() != 1 {
			pflag.Usage()
			os.Exit(1)
		}

		var err error

		bits, err = ParseBitString(pflag.Arg(0))
		if err != nil || len(bits) == 0 {
			fmt.Fprintf(os.Stderr, "Invalid bit string %q\n", pflag.Arg(0))
			os.Exit(1)
		}
	}

	if *amplitude < 1 || *amplitude > SampleMax || *clock < 2 || *repeat < 1 {
		fmt.Fprintf(os.Stderr, "Amplitude, clock or repeat out of range.\n")
		os.Exit(1)
	}

	var samples []int

	for range *repeat {
		var frame, err = GenTrace(*modulation, bits, *clock, *fcHigh, *fcLow, *amplitude)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}

		samples = append(samples, frame...)

		if *terminator {
			samples = AppendTerminator(samples, *clock, *amplitude)
		}
	}

	var err error
	if *outputFile == "" {
		err = SaveTrace(os.Stdout, samples)
	} else {
		err = SaveTraceFile(*outputFile, samples)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

/* end gen_trace.go */
