package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Christopher-Hayes/active-window/window"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML, FormatText:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use json, yaml, or text)", s)
	}
}

var (
	colorKey   = color.New(color.FgMagenta).SprintFunc()
	colorValue = color.New(color.FgWhite, color.Bold).SprintFunc()
)

// Printer writes command results in one format.
type Printer struct {
	W      io.Writer
	Format Format
	Pretty bool
}

// NewPrinter returns a Printer writing to stdout.
func NewPrinter(format Format, pretty bool) *Printer {
	return &Printer{W: os.Stdout, Format: format, Pretty: pretty}
}

// PrintSummary prints the active window, or the format's empty value when
// ok is false: null for JSON and YAML, "no active window" for text.
func (p *Printer) PrintSummary(summary window.Summary, ok bool) error {
	if p.Format == FormatText {
		if !ok {
			_, err := fmt.Fprintln(p.W, "no active window")
			return err
		}
		_, err := fmt.Fprintln(p.W, FormatSummary(summary))
		return err
	}
	if !ok {
		return p.Print(nil)
	}
	return p.Print(summary)
}

// PrintDescriptors prints a window list.
func (p *Printer) PrintDescriptors(descs []window.Descriptor) error {
	if descs == nil {
		descs = []window.Descriptor{}
	}
	if p.Format == FormatText {
		for _, d := range descs {
			marker := " "
			if d.Active {
				marker = "*"
			}
			if _, err := fmt.Fprintf(p.W, "%s %s\n", marker, FormatDescriptor(d)); err != nil {
				return err
			}
		}
		return nil
	}
	return p.Print(descs)
}

// Print serializes v in the printer's format. Text falls back to YAML for
// values that have no dedicated text rendering.
func (p *Printer) Print(v interface{}) error {
	switch p.Format {
	case FormatJSON:
		if p.Pretty {
			return PrintPrettyJSON(p.W, v)
		}
		return PrintJSON(p.W, v)
	case FormatYAML, FormatText:
		return PrintYAML(p.W, v)
	default:
		return fmt.Errorf("unsupported output format: %s", p.Format)
	}
}

// PrintJSON serializes v as compact single-line JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v as indented JSON.
func PrintPrettyJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v as YAML.
func PrintYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

// FormatSummary renders a summary for humans.
func FormatSummary(s window.Summary) string {
	return fmt.Sprintf("%s: %s %s",
		colorKey("Active Window"),
		colorValue(s.Name),
		color.HiBlackString("(pid %d, %d,%d %dx%d)", s.PID, s.Extents[0], s.Extents[1], s.Extents[2], s.Extents[3]))
}

// FormatDescriptor renders one list entry for humans.
func FormatDescriptor(d window.Descriptor) string {
	line := fmt.Sprintf("%s %s",
		colorValue(d.Class),
		color.HiBlackString("(pid %d, %d,%d %dx%d)", d.PID, d.Geometry.X, d.Geometry.Y, d.Geometry.Width, d.Geometry.Height))
	if d.Title != "" {
		line += " " + d.Title
	}
	return line
}
