package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Console output for the command line tools.
 *
 * Description:	Results, errors and debug chatter each get their own
 *		colour when colour is enabled.  lipgloss drops the escape
 *		sequences by itself when stdout is not a terminal, so
 *		piping the output somewhere stays clean.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lestrrat-go/strftime"
)

type TextColor int

const (
	ColorInfo    TextColor = iota /* default */
	ColorError                    /* red */
	ColorDevice                   /* green */
	ColorDecoded                  /* blue */
	ColorDebug                    /* dark green */
)

var textColorStyles = map[TextColor]lipgloss.Style{
	ColorInfo:    lipgloss.NewStyle(),
	ColorError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	ColorDevice:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	ColorDecoded: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	ColorDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
}

var textColorLevel int

var textColorCurrent = ColorInfo

var textTimestampFormat string

func textColorInit(level int) {
	textColorLevel = level
	textColorCurrent = ColorInfo
}

func textColorSet(c TextColor) {
	textColorCurrent = c
}

// setTimestampFormat turns on a strftime style prefix for result lines.  Empty turns it off.
func setTimestampFormat(format string) error {
	if format != "" {
		var _, err = strftime.New(format)
		if err != nil {
			return demodErr("timestamp", ErrInvalidArgument, "%s", err)
		}
	}

	textTimestampFormat = format

	return nil
}

func timestampPrefix(now time.Time) string {
	if textTimestampFormat == "" {
		return ""
	}

	var formatted, err = strftime.Format(textTimestampFormat, now)
	if err != nil {
		return ""
	}

	return formatted + " "
}

// printf writes to stdout in the current colour.  A trailing newline is kept outside the styled text.
func printf(format string, a ...any) {
	var text = fmt.Sprintf(format, a...)

	if textColorLevel == 0 || textColorCurrent == ColorInfo {
		fmt.Print(text)
		return
	}

	var body, hasNewline = strings.CutSuffix(text, "\n")

	fmt.Print(textColorStyles[textColorCurrent].Render(body))

	if hasNewline {
		fmt.Print("\n")
	}
}

// resultf is printf for decoded results, prefixed by the timestamp when one is configured.
func resultf(format string, a ...any) {
	textColorSet(ColorDecoded)
	printf("%s"+format, append([]any{timestampPrefix(time.Now())}, a...)...)
	textColorSet(ColorInfo)
}

func errorf(format string, a ...any) {
	textColorSet(ColorError)
	printf(format, a...)
	textColorSet(ColorInfo)
}

/* end textcolor.go */
