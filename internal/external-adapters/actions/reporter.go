package actions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reporter writes workflow commands to the step log and appends to the runner's
// GITHUB_PATH and GITHUB_OUTPUT files.
type Reporter struct {
	out        io.Writer
	pathFile   string
	outputFile string
	failed     bool
}

// NewReporter creates a reporter writing commands to out. Empty file paths fall back to stdout commands.
func NewReporter(out io.Writer, pathFile, outputFile string) *Reporter {
	return &Reporter{
		out:        out,
		pathFile:   pathFile,
		outputFile: outputFile,
	}
}

// NewReporterFromEnv creates a reporter for the current runner
func NewReporterFromEnv(out io.Writer) *Reporter {
	return NewReporter(out, os.Getenv("GITHUB_PATH"), os.Getenv("GITHUB_OUTPUT"))
}

// SetFailed logs msg as an error annotation and marks the step failed
func (r *Reporter) SetFailed(msg string) {
	r.failed = true
	r.command("error", msg)
}

// Failed reports whether SetFailed was called
func (r *Reporter) Failed() bool {
	return r.failed
}

// Warning logs msg as a warning annotation
func (r *Reporter) Warning(msg string) {
	r.command("warning", msg)
}

// AddPath prepends dir to PATH for subsequent steps
func (r *Reporter) AddPath(dir string) error {
	if r.pathFile == "" {
		r.command("add-path", dir)
		return nil
	}
	return appendLine(r.pathFile, dir+"\n")
}

// SetOutput publishes a step output
func (r *Reporter) SetOutput(name, value string) error {
	if r.outputFile == "" {
		fmt.Fprintf(r.out, "::set-output name=%s::%s\n", escapeProperty(name), escapeData(value))
		return nil
	}

	if !strings.ContainsAny(value, "\r\n") {
		return appendLine(r.outputFile, name+"="+value+"\n")
	}

	delimiter, err := newDelimiter()
	if err != nil {
		return err
	}
	if strings.Contains(value, delimiter) || strings.Contains(name, delimiter) {
		return fmt.Errorf("output %s collides with delimiter", name)
	}
	return appendLine(r.outputFile, fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter))
}

// Group starts a collapsible log section
func (r *Reporter) Group(name string) {
	r.command("group", name)
}

// EndGroup ends the current log section
func (r *Reporter) EndGroup() {
	fmt.Fprintln(r.out, "::endgroup::")
}

func (r *Reporter) command(name, message string) {
	fmt.Fprintf(r.out, "::%s::%s\n", name, escapeData(message))
}

func appendLine(path, line string) error {
	//nolint:gosec // G304: path is provided by the runner
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Defer close

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newDelimiter() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate delimiter: %w", err)
	}
	return "ghadelimiter_" + hex.EncodeToString(buf), nil
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
