package zerolog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ConsoleWriter renders zerolog JSON events as coloured single lines
type ConsoleWriter struct {
	out     io.Writer
	colors  bool
	verbose bool

	buffer strings.Builder
	lock   sync.Mutex
}

// NewConsoleWriter creates a console writer. With colors disabled the
// colorstring tags are stripped. Verbose appends every event field.
func NewConsoleWriter(out io.Writer, colors, verbose bool) *ConsoleWriter {
	return &ConsoleWriter{out: out, colors: colors, verbose: verbose}
}

var skippedFields = map[string]bool{
	zerolog.LevelFieldName:     true,
	zerolog.MessageFieldName:   true,
	zerolog.TimestampFieldName: true,
	zerolog.ErrorFieldName:     true,
	"target":                   true,
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	switch evt[zerolog.LevelFieldName] {
	case "fatal", "error":
		w.buffer.WriteString("[red]")
	case "warn":
		w.buffer.WriteString("[yellow]")
	case "debug", "trace":
		w.buffer.WriteString("[blue]")
	default:
		w.buffer.WriteString("[green]")
	}

	if target, ok := evt["target"].(string); ok {
		w.buffer.WriteString("[bold]" + target + ":[reset] ")
	}

	msg, _ := evt[zerolog.MessageFieldName].(string)
	w.buffer.WriteString(msg)

	if w.verbose {
		keys := make([]string, 0, len(evt))
		for key := range evt {
			if !skippedFields[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			w.buffer.WriteString(fmt.Sprintf(" [dim]%s=%v[reset]", key, evt[key]))
		}
	}

	if errorDetails, ok := evt[zerolog.ErrorFieldName].(string); ok {
		w.buffer.WriteString("\n  ")
		w.buffer.WriteString(strings.ReplaceAll(strings.TrimSpace(errorDetails), "\n", "\n  "))
	}

	w.buffer.WriteString("[reset]\n")

	colorizer := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !w.colors,
		Reset:   true,
	}
	if _, err := io.WriteString(w.out, colorizer.Color(w.buffer.String())); err != nil {
		return 0, err
	}

	// zerolog treats short writes as errors
	return len(p), nil
}
