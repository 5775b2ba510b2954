package output

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/tathya/tathya-cli/pkg/config"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	return ParseFormat(config.GetString("output.format"))
}

// ParseFormat maps a name to a format, text by default
func ParseFormat(format string) OutputFormat {
	switch format {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Printer writes command output in one format
type Printer struct {
	W      io.Writer
	Format OutputFormat
}

// Default returns a printer for the terminal in the configured format
func Default() *Printer {
	return &Printer{W: color.Output, Format: GetOutputFormat()}
}

// JSON reports whether the printer emits machine-readable output
func (p *Printer) JSON() bool {
	return p.Format == FormatJSON
}

// Value prints data; text and table formats pretty-print it as JSON
func (p *Printer) Value(title string, data interface{}) error {
	if p.Format != FormatJSON && title != "" {
		fmt.Fprintf(p.W, "%s:\n", title)
	}
	pretty, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.W, pretty)
	return nil
}

// Table prints rows under headers. In JSON format data is printed instead.
func (p *Printer) Table(headers []string, rows [][]string, data interface{}) error {
	if p.Format == FormatJSON {
		return p.Value("", data)
	}
	w := tabwriter.NewWriter(p.W, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}

// Record prints a flat record with sorted keys
func (p *Printer) Record(title string, record map[string]interface{}) error {
	switch p.Format {
	case FormatJSON:
		return p.Value("", record)
	case FormatTable:
		rows := make([][]string, 0, len(record))
		for _, k := range sortedKeys(record) {
			rows = append(rows, []string{k, fmt.Sprintf("%v", record[k])})
		}
		return p.Table([]string{"Field", "Value"}, rows, record)
	default:
		if title != "" {
			fmt.Fprintf(p.W, "%s:\n", title)
		}
		bold := color.New(color.Bold)
		for _, k := range sortedKeys(record) {
			bold.Fprint(p.W, k+": ")
			fmt.Fprintf(p.W, "%v\n", record[k])
		}
		return nil
	}
}

// Success prints a success message
func (p *Printer) Success(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(p.W, msg+"\n", args...)
}

// Error prints an error message
func (p *Printer) Error(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(p.W, "Error: "+msg+"\n", args...)
}

// Info prints an info message
func (p *Printer) Info(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(p.W, msg+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(p.W, "Warning: "+msg+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	Default().Success(msg, args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	Default().Error(msg, args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	Default().Info(msg, args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	Default().Warning(msg, args...)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatAsJSON converts data to JSON string (convenience function)
func FormatAsJSON(data interface{}) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// FormatAsPrettyJSON converts data to pretty JSON string (convenience function)
func FormatAsPrettyJSON(data interface{}) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
