package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write traces as text, one sample per line.
 *
 * Description:	This is the format the reader's client saves with, so
 *		captures can be passed around and replayed.  Blank lines
 *		and lines starting with '#' are skipped on input.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func LoadTrace(r io.Reader) ([]int, error) {
	var samples []int
	var scanner = bufio.NewScanner(r)
	var lineno = 0

	for scanner.Scan() {
		lineno++

		var line = strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var v, err = strconv.Atoi(line)
		if err != nil {
			return nil, demodErr("LoadTrace", ErrInvalidArgument, "line %d: %q is not a sample", lineno, line)
		}

		if len(samples) == MaxSampleCount {
			break
		}

		samples = append(samples, clampSample(v))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	return samples, nil
}

func LoadTraceFile(path string) ([]int, error) {
	var f, err = os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	return LoadTrace(f)
}

func SaveTrace(w io.Writer, samples []int) error {
	var bw = bufio.NewWriter(w)

	for _, v := range samples {
		if _, err := fmt.Fprintf(bw, "%d\n", v); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	return bw.Flush()
}

func SaveTraceFile(path string, samples []int) error {
	var f, err = os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("creating trace: %w", err)
	}

	if err := SaveTrace(f, samples); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

/* end trace_file.go */
