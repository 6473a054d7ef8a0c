package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Command line front end for the demodulators.
 *
 * Description:	A trace is loaded from a file or fetched from a reader,
 *		then the commands given are run on it in order.  Commands
 *		are separated by a lone "+", so a raw demod can be
 *		followed by a second pass over its bits:
 *
 *			lfdemod -t em.pm3 rawdemod ar + biphaseraw 1
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type lfdemodCommand struct {
	usage string
	run   func(ctx *DecodeContext, args []string) error
}

var lfdemodCommands = map[string]lfdemodCommand{
	"detectclock":   {"detectclock <a|f|p|n> [clock]", cmdDetectClock},
	"rawdemod":      {"rawdemod <ar|am|ab|fs|nr|p1|p2|p3> [clock] [invert] [maxerr]", cmdRawDemod},
	"manrawdecode":  {"manrawdecode [invert] [maxerr]", cmdManRawDecode},
	"biphaseraw":    {"biphaseraw [offset] [invert] [maxerr]", cmdBiphaseRaw},
	"autocorr":      {"autocorr [window] [g]", cmdAutoCorr},
	"em410x":        {"em410x [clock] [invert] [maxerr]", cmdEM410x},
	"search":        {"search", cmdSearch},
	"preamble":      {"preamble <bits> [length]", cmdPreamble},
	"print":         {"print [width]", cmdPrint},
	"hex":           {"hex", cmdHex},
	"samples":       {"samples <count>", cmdSamples},
	"discover":      {"discover", cmdDiscover},
	"save":          {"save <file>", cmdSave},
	"norm":          {"norm", cmdSampleOp},
	"hpf":           {"hpf", cmdSampleOp},
	"edgedetect":    {"edgedetect [threshold]", cmdSampleOp},
	"zerocrossings": {"zerocrossings", cmdSampleOp},
	"fsktonrz":      {"fsktonrz [clock] [fc_high] [fc_low]", cmdFSKToNRZ},
	"dirthreshold":  {"dirthreshold <up> <down>", cmdSampleOp},
	"decimate":      {"decimate <n>", cmdSampleOp},
	"undecimate":    {"undecimate <n>", cmdSampleOp},
	"ltrim":         {"ltrim <n>", cmdSampleOp},
	"rtrim":         {"rtrim <n>", cmdSampleOp},
	"shift":         {"shift <n>", cmdSampleOp},
}

var lfdemodCommandOrder = []string{
	"detectclock", "rawdemod", "manrawdecode", "biphaseraw", "autocorr", "em410x", "search",
	"preamble", "print", "hex", "samples", "discover", "save",
	"norm", "hpf", "edgedetect", "zerocrossings", "fsktonrz", "dirthreshold",
	"decimate", "undecimate", "ltrim", "rtrim", "shift",
}

func LFDemodMain() {
	var configFile = pflag.StringP("config", "c", "", "Configuration file.  Default is the first of lfdemod.yaml, ~/.lfdemod.yaml, /etc/lfdemod.yaml.")
	var traceFile = pflag.StringP("trace", "t", "", "Load samples from this file, one per line.")
	var port = pflag.StringP("device", "d", "", "Reader serial port, or \"auto\".")
	var verbose = pflag.BoolP("verbose", "v", false, "Log decoder diagnostics.")
	var timestamp = pflag.StringP("timestamp", "T", "", "Precede results with a strftime style timestamp, e.g. \"%H:%M:%S\".")
	var color = pflag.IntP("color", "C", -1, "Text colour.  0 for none, 1 for colour.")
	var version = pflag.BoolP("version", "V", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] command [args] [+ command [args]] ...\n\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n")

		for _, name := range lfdemodCommandOrder {
			fmt.Fprintf(os.Stderr, "  %s\n", lfdemodCommands[name].usage)
		}

		fmt.Fprintf(os.Stderr, "\nA clock of 1 means detect the clock and invert.\n")
	}

	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version {
		printVersion("lfdemod", *verbose)
		return
	}

	var cfg, cfgErr = lfdemodConfig(*configFile)
	if cfgErr != nil {
		errorf("%s\n", cfgErr)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}

	if *timestamp != "" {
		cfg.Log.TimestampFormat = *timestamp
	}

	if *color >= 0 {
		cfg.Log.Color = *color
	}

	if *port != "" {
		cfg.Device.Port = *port
	}

	textColorInit(cfg.Log.Color)

	if err := setTimestampFormat(cfg.Log.TimestampFormat); err != nil {
		errorf("%s\n", err)
		os.Exit(1)
	}

	var logger, logErr = NewLogger(os.Stderr, cfg.Log, "lfdemod")
	if logErr != nil {
		errorf("%s\n", logErr)
		os.Exit(1)
	}

	var ctx = NewDecodeContext(cfg, logger)

	if *traceFile != "" {
		var samples, err = LoadTraceFile(*traceFile)
		if err != nil {
			errorf("%s\n", err)
			os.Exit(1)
		}

		ctx.LoadSamples(samples)
		printf("Loaded %d samples from %s\n", ctx.Samples.Len(), *traceFile)
	}

	var commands = splitCommands(pflag.Args())
	if len(commands) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	for _, args := range commands {
		var cmd, ok = lfdemodCommands[args[0]]
		if !ok {
			errorf("Unknown command %q\n", args[0])
			pflag.Usage()
			os.Exit(1)
		}

		if err := cmd.run(ctx, args); err != nil {
			errorf("%s: %s\n", args[0], err)
			os.Exit(1)
		}
	}
}

func lfdemodConfig(path string) (Config, error) {
	if path == "" {
		path = FindConfig()
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	return LoadConfig(path)
}

// splitCommands breaks the argument list at each lone "+".
func splitCommands(args []string) [][]string {
	var out [][]string
	var cur []string

	for _, a := range args {
		if a == "+" {
			if len(cur) > 0 {
				out = append(out, cur)
			}

			cur = nil

			continue
		}

		cur = append(cur, a)
	}

	if len(cur) > 0 {
		out = append(out, cur)
	}

	return out
}

// intArg returns args[i] as an integer, or def when it was not given.
func intArg(args []string, i int, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}

	var v, err = strconv.Atoi(args[i])
	if err != nil {
		return 0, demodErr(args[0], ErrInvalidArgument, "argument %d: %q is not a number", i, args[i])
	}

	return v, nil
}

// demodArgs reads [clock] [invert] [maxerr] starting at args[first].
func demodArgs(ctx *DecodeContext, args []string, first int) (DemodOptions, error) {
	var opts = ctx.DefaultDemodOptions()
	var err error

	if opts.Clock, err = intArg(args, first, 0); err != nil {
		return opts, err
	}

	if opts.Invert, err = intArg(args, first+1, 0); err != nil {
		return opts, err
	}

	if opts.MaxErrors, err = intArg(args, first+2, opts.MaxErrors); err != nil {
		return opts, err
	}

	opts.Clock, opts.Invert, err = NormalizeClockArg(opts.Clock, opts.Invert)

	return opts, err
}

func printBits(bb BitBuffer) {
	resultf("%d bits, clock %d, start %d, errors %d\n", bb.Len(), bb.Clock, bb.StartOffset, bb.ErrCount)
	printf("%s\n", bb.BinaryString(32))
}

func cmdDetectClock(ctx *DecodeContext, args []string) error {
	if len(args) < 2 {
		return demodErr(args[0], ErrInvalidArgument, "modulation required")
	}

	var mod, err = ParseModulation(args[1])
	if err != nil {
		return err
	}

	var hint, hintErr = intArg(args, 2, 0)
	if hintErr != nil {
		return hintErr
	}

	var res, detectErr = ctx.DetectClock(mod, hint)
	if detectErr != nil {
		return detectErr
	}

	switch mod {
	case ModFSK:
		resultf("%s clock: %d, field clocks %d/%d\n", mod, res.Clock, res.FCHigh, res.FCLow)
	case ModPSK:
		resultf("%s clock: %d, carrier %d\n", mod, res.Clock, res.Carrier)
	default:
		resultf("%s clock: %d\n", mod, res.Clock)
	}

	if len(res.Terminators) > 0 {
		textColorSet(ColorDebug)
		printf("Sequence terminator at %d\n", res.Terminators[0].Start)
		textColorSet(ColorInfo)
	}

	return nil
}

func cmdRawDemod(ctx *DecodeContext, args []string) error {
	if len(args) < 2 {
		return demodErr(args[0], ErrInvalidArgument, "demodulator required")
	}

	var opts, err = demodArgs(ctx, args, 2)
	if err != nil {
		return err
	}

	var bb BitBuffer

	switch strings.ToLower(args[1]) {
	case "ar":
		bb, err = ctx.DemodASKRaw(opts)
	case "am":
		bb, err = ctx.DemodASKManchester(opts)
	case "ab":
		bb, err = ctx.DemodASKBiphase(0, opts)
	case "nr":
		bb, err = ctx.DemodNRZ(opts)
	case "fs":
		var info FSKInfo
		bb, info, err = ctx.DemodFSK(opts)
		if err == nil {
			resultf("%s, field clocks %d/%d\n", info.Label, info.FCHigh, info.FCLow)
		}
	case "p1", "p2", "p3":
		var info PSKInfo

		switch args[1] {
		case "p1":
			bb, info, err = ctx.DemodPSK1(opts)
		case "p2":
			bb, info, err = ctx.DemodPSK2(opts)
		default:
			bb, info, err = ctx.DemodPSK3(opts)
		}

		if err == nil {
			resultf("PSK carrier %d\n", info.Carrier)
		}
	default:
		return demodErr(args[0], ErrInvalidArgument, "unknown demodulator %q", args[1])
	}

	if err != nil {
		return err
	}

	printBits(bb)

	return nil
}

func cmdManRawDecode(ctx *DecodeContext, args []string) error {
	var invert, err = intArg(args, 1, 0)
	if err != nil {
		return err
	}

	var maxErr, maxErrErr = intArg(args, 2, ctx.Config.Demod.MaxErrors)
	if maxErrErr != nil {
		return maxErrErr
	}

	var bb, decodeErr = ctx.ManchesterDecodeBits(invert, maxErr)
	if decodeErr != nil {
		return decodeErr
	}

	printBits(bb)

	return nil
}

func cmdBiphaseRaw(ctx *DecodeContext, args []string) error {
	var offset, err = intArg(args, 1, 0)
	if err != nil {
		return err
	}

	var invert, invertErr = intArg(args, 2, 0)
	if invertErr != nil {
		return invertErr
	}

	var maxErr, maxErrErr = intArg(args, 3, ctx.Config.Demod.MaxErrors)
	if maxErrErr != nil {
		return maxErrErr
	}

	var bb, decodeErr = ctx.BiphaseDecode(offset, invert, maxErr)
	if decodeErr != nil {
		return decodeErr
	}

	printBits(bb)

	return nil
}

func cmdAutoCorr(ctx *DecodeContext, args []string) error {
	var window, err = intArg(args, 1, 4000)
	if err != nil {
		return err
	}

	window = min(window, ctx.Samples.Len()-1)

	var commit = len(args) > 2 && args[2] == "g"

	var res, acErr = ctx.AutoCorrelate(window, commit)
	if acErr != nil {
		return acErr
	}

	resultf("Possible correlation at %d samples\n", res.Distance)

	return nil
}

func cmdEM410x(ctx *DecodeContext, args []string) error {
	var res EM410xResult
	var err error

	if ctx.Bits.Len() > 0 && len(args) == 1 {
		res, err = ctx.DecodeEM410x()
	} else {
		var opts, optsErr = demodArgs(ctx, args, 1)
		if optsErr != nil {
			return optsErr
		}

		res, err = ctx.DemodEM410x(opts)
	}

	if err != nil {
		return err
	}

	if res.XL {
		resultf("EM410x XL ID %s\n", res)
		return nil
	}

	resultf("EM410x ID %s\n", res)

	for _, f := range EM410xFormats(res.Lo) {
		printf("  %-15s %s\n", f.Name, f.Value)
	}

	return nil
}

func cmdSearch(ctx *DecodeContext, args []string) error {
	var hits = ctx.SearchModulation(ctx.DefaultDemodOptions())
	if len(hits) == 0 {
		return demodErr(args[0], ErrNoPatternFound, "no known modulation found")
	}

	for _, h := range hits {
		resultf("%s: %s, %d bits, %d errors\n", h.Name, h.Detail, h.Bits.Len(), h.Bits.ErrCount)
	}

	return nil
}

func cmdPreamble(ctx *DecodeContext, args []string) error {
	if len(args) < 2 {
		return demodErr(args[0], ErrInvalidArgument, "preamble bits required")
	}

	var pattern, err = ParseBitString(args[1])
	if err != nil {
		return err
	}

	var expected, expErr = intArg(args, 2, 0)
	if expErr != nil {
		return expErr
	}

	var start, frameLen, searchErr = SearchPreamble(ctx.Bits.Bits, pattern, expected)
	if searchErr != nil {
		return searchErr
	}

	resultf("Preamble at bit %d, frame length %d\n", start, frameLen)

	return nil
}

func cmdPrint(ctx *DecodeContext, args []string) error {
	var width, err = intArg(args, 1, 32)
	if err != nil {
		return err
	}

	if ctx.Bits.Len() == 0 {
		return demodErr(args[0], ErrInsufficientData, "bit buffer is empty")
	}

	printf("%s\n", ctx.Bits.BinaryString(width))

	return nil
}

func cmdHex(ctx *DecodeContext, args []string) error {
	var s, err = ctx.Bits.HexString()
	if err != nil {
		return err
	}

	resultf("%s\n", s)

	return nil
}

func cmdSamples(ctx *DecodeContext, args []string) error {
	var n, err = intArg(args, 1, MaxSampleCount)
	if err != nil {
		return err
	}

	var port, portErr = ResolvePort(ctx.Config.Device.Port)
	if portErr != nil {
		return portErr
	}

	var t, openErr = OpenSerial(port, ctx.Config.Device.Baud)
	if openErr != nil {
		return openErr
	}
	defer t.Close()

	if err := ctx.AcquireSamples(context.Background(), t, n); err != nil {
		return err
	}

	printf("Got %d samples from %s\n", ctx.Samples.Len(), port)

	return nil
}

func cmdDiscover(ctx *DecodeContext, args []string) error {
	var found, err = DiscoverReaders()
	if err != nil {
		return err
	}

	if len(found) == 0 {
		printf("No readers found.\n")
		return nil
	}

	textColorSet(ColorDevice)
	for _, d := range found {
		printf("%s  %s:%s  %s\n", d.Devnode, d.Vendor, d.Product, d.Serial)
	}
	textColorSet(ColorInfo)

	return nil
}

func cmdSave(ctx *DecodeContext, args []string) error {
	if len(args) < 2 {
		return demodErr(args[0], ErrInvalidArgument, "file name required")
	}

	if err := SaveTraceFile(args[1], ctx.Samples.Samples()); err != nil {
		return err
	}

	printf("Saved %d samples to %s\n", ctx.Samples.Len(), args[1])

	return nil
}

const defaultEdgeThreshold = 25

func cmdFSKToNRZ(ctx *DecodeContext, args []string) error {
	var clk, err = intArg(args, 1, 0)
	if err != nil {
		return err
	}

	var fcHigh, fcHighErr = intArg(args, 2, 0)
	if fcHighErr != nil {
		return fcHighErr
	}

	var fcLow, fcLowErr = intArg(args, 3, 0)
	if fcLowErr != nil {
		return fcLowErr
	}

	if err := ctx.FSKToNRZ(clk, fcHigh, fcLow); err != nil {
		return err
	}

	printf("%s: %d samples\n", args[0], ctx.Samples.Len())

	return nil
}

func cmdSampleOp(ctx *DecodeContext, args []string) error {
	var sb = ctx.Samples

	var a, err = intArg(args, 1, 0)
	if err != nil {
		return err
	}

	var b, bErr = intArg(args, 2, 0)
	if bErr != nil {
		return bErr
	}

	switch args[0] {
	case "norm":
		err = sb.Normalize()
	case "hpf":
		sb.HighPass(ctx.Config.Demod.SettleSamples)
	case "edgedetect":
		var threshold, thresholdErr = intArg(args, 1, defaultEdgeThreshold)
		if thresholdErr != nil {
			return thresholdErr
		}

		err = sb.EdgeDetect(threshold)
	case "zerocrossings":
		sb.ZeroCrossings(ctx.Config.Demod.SettleSamples)
	case "dirthreshold":
		err = sb.DirectionalThreshold(a, b)
	case "decimate":
		err = sb.Decimate(a)
	case "undecimate":
		err = sb.Undecimate(a)
	case "ltrim":
		err = sb.Ltrim(a)
	case "rtrim":
		err = sb.Rtrim(a)
	case "shift":
		sb.ShiftZero(a)
	default:
		err = errors.New("not a sample operation")
	}

	if err != nil {
		return err
	}

	printf("%s: %d samples\n", args[0], sb.Len())

	return nil
}

/* end lfdemod_main.go */
