package output

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/murmur/internal/cli/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Out is where all command output goes
var Out io.Writer = color.Output

// Format represents the output format type
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatText  Format = "text"
)

// CurrentFormat returns the configured output format
func CurrentFormat() Format {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidFormat checks if format is valid
func ValidFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// IsJSON reports whether commands should print raw JSON
func IsJSON() bool {
	return CurrentFormat() == FormatJSON
}

// JSON writes data as indented JSON
func JSON(data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out, string(encoded))
	return err
}

// Table prints rows under bold headers, aligned in columns
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		bold.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

// Record prints key/value pairs sorted by key
func Record(title string, record map[string]interface{}) error {
	if IsJSON() {
		return JSON(record)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if CurrentFormat() == FormatTable {
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, fmt.Sprintf("%v", record[k])})
		}
		Table([]string{"Field", "Value"}, rows)
		return nil
	}

	if title != "" {
		fmt.Fprintf(Out, "%s:\n", title)
	}
	bold := color.New(color.Bold)
	for _, k := range keys {
		bold.Fprint(Out, k+": ")
		fmt.Fprintf(Out, "%v\n", record[k])
	}
	return nil
}

// Success prints a success message
func Success(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Out, msg+"\n", args...)
}

// Info prints an info message
func Info(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Out, msg+"\n", args...)
}

// Warning prints a warning message
func Warning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Out, "Warning: "+msg+"\n", args...)
}

// Error prints an error message
func Error(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Out, "Error: "+msg+"\n", args...)
}
