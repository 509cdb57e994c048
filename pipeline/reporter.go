package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	spinnerFrames   = "⡿⣟⣯⣷⣾⣽⣻⢿"
	spinnerInterval = 25 * time.Millisecond
	descWidth       = 53
)

// Reporter prints step progress. On a terminal it animates a spinner after
// the step description; otherwise it prints one line per finished step.
type Reporter struct {
	out     io.Writer
	spinner bool

	red, green, yellow, blue, magenta *color.Color
}

// NewReporter writes progress to w. Colour and the spinner are enabled only
// when w is a terminal.
func NewReporter(w io.Writer) *Reporter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	r := &Reporter{
		out:     w,
		spinner: tty,
		red:     color.New(color.FgRed),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		blue:    color.New(color.FgBlue),
		magenta: color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{r.red, r.green, r.yellow, r.blue, r.magenta} {
		if tty {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Headerf prints a task header.
func (r *Reporter) Headerf(format string, args ...any) {
	fmt.Fprintln(r.out, r.yellow.Sprintf(format, args...))
	fmt.Fprintln(r.out)
}

// Successf prints a success line.
func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintln(r.out, r.green.Sprintf("✓ "+format, args...))
}

// Failuref prints a failure line.
func (r *Reporter) Failuref(format string, args ...any) {
	fmt.Fprintln(r.out, r.red.Sprintf("✗ "+format, args...))
}

// Infof prints an informational line.
func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintln(r.out, r.blue.Sprintf(format, args...))
}

// Step marks the start of a step. The returned function must be called once
// with the step's error (nil on success) and any stderr to show on failure.
func (r *Reporter) Step(desc string) func(err error, stderr string) {
	fmt.Fprintf(r.out, "%-*s ", descWidth, desc)

	var (
		stop chan struct{}
		wg   sync.WaitGroup
	)
	if r.spinner {
		stop = make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.spin(stop)
		}()
	}

	return func(err error, stderr string) {
		if stop != nil {
			close(stop)
			wg.Wait()
			fmt.Fprint(r.out, "\b")
		}
		if err == nil {
			fmt.Fprintln(r.out, r.green.Sprint("✓"))
			return
		}
		fmt.Fprintln(r.out, r.red.Sprint("𐄂"))
		if stderr != "" {
			fmt.Fprintln(r.out, r.red.Sprintf("\nError Output:\n%s", stderr))
		}
	}
}

func (r *Reporter) spin(stop <-chan struct{}) {
	frames := []rune(spinnerFrames)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	fmt.Fprint(r.out, " ")
	for i := 0; ; i = (i + 1) % len(frames) {
		fmt.Fprint(r.out, "\b"+r.magenta.Sprint(string(frames[i])))
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
