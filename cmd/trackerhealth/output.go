package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/jonwraymond/trackerhealth/health"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorDim    = "\033[2m"
)

// checkResult is the outcome of checking one command-line source.
type checkResult struct {
	Source string
	Report health.Report
	Err    error
}

// resultWriter is implemented by each output format.
type resultWriter interface {
	WriteResult(res checkResult) error
	Close() error
}

// useColor reports whether ANSI colors should be written to f.
func useColor(f *os.File, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// textWriter writes a human-readable summary per source.
type textWriter struct {
	w     io.Writer
	color bool
}

func newTextWriter(w io.Writer, color bool) *textWriter {
	return &textWriter{w: w, color: color}
}

func (t *textWriter) paint(color, s string) string {
	if !t.color {
		return s
	}
	return color + s + colorReset
}

func (t *textWriter) WriteResult(res checkResult) error {
	if res.Err != nil {
		_, err := fmt.Fprintf(t.w, "%s %s\n  %s\n", t.paint(colorRed, "FAIL"), res.Source, res.Err)
		return err
	}

	r := res.Report
	_, err := fmt.Fprintf(t.w, "%s %s\n  seeds %d  peers %d  (%d/%d trackers answered, %d timed out)\n",
		t.paint(colorGreen, "OK"), res.Source,
		r.Seeds, r.Peers,
		r.Successes(), len(r.Extra), r.Timeouts(),
	)
	if err != nil {
		return err
	}

	for _, o := range r.Extra {
		var line string
		switch {
		case o.OK():
			line = fmt.Sprintf("  %s %s  %d/%d/%d %s",
				t.paint(colorGreen, "+"), o.Tracker,
				o.Seeds, o.Peers, o.Downloads,
				t.paint(colorDim, o.ResponseTime.Round(time.Millisecond).String()))
		case o.TimedOut():
			line = fmt.Sprintf("  %s %s  %s", t.paint(colorYellow, "~"), o.Tracker, o.Err)
		default:
			line = fmt.Sprintf("  %s %s  %s", t.paint(colorRed, "-"), o.Tracker, o.Err)
		}
		if _, err := fmt.Fprintln(t.w, line); err != nil {
			return err
		}
	}
	return nil
}

func (t *textWriter) Close() error { return nil }

type jsonEntry struct {
	Source string           `json:"source"`
	Seeds  int              `json:"seeds"`
	Peers  int              `json:"peers"`
	Extra  []health.Outcome `json:"extra,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// jsonWriter writes all results as one JSON array on Close.
type jsonWriter struct {
	w       io.Writer
	entries []jsonEntry
}

func newJSONWriter(w io.Writer) *jsonWriter {
	return &jsonWriter{w: w, entries: []jsonEntry{}}
}

func (j *jsonWriter) WriteResult(res checkResult) error {
	e := jsonEntry{Source: res.Source}
	if res.Err != nil {
		e.Error = res.Err.Error()
	} else {
		e.Seeds, e.Peers, e.Extra = res.Report.Seeds, res.Report.Peers, res.Report.Extra
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *jsonWriter) Close() error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.entries)
}
