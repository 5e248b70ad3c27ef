package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Notifier delivers alerts as desktop notifications, falling back to a
// plain line on Fallback when no notifier command is available.
type Notifier struct {
	// GOOS selects the notifier command; empty means runtime.GOOS.
	GOOS string
	// Run executes a command; nil runs it with os/exec.
	Run func(name string, args ...string) error
	// LookPath reports whether a command exists; nil uses exec.LookPath.
	LookPath func(name string) (string, error)
	// Fallback receives alerts no notifier could show; nil means stderr.
	Fallback io.Writer
}

// Notify sends alert with the default Notifier.
func Notify(alert Alert) error {
	return (&Notifier{}).Notify(alert)
}

// Notify shows alert through osascript on macOS and notify-send on Linux.
// Critical alerts are sent with the highest urgency the platform offers.
func (n *Notifier) Notify(alert Alert) error {
	name, args, ok := n.command(alert)
	if !ok {
		return n.fallback(alert)
	}
	if _, err := n.lookPath(name); err != nil {
		return n.fallback(alert)
	}
	if err := n.run(name, args...); err != nil {
		return n.fallback(alert)
	}
	return nil
}

// command builds the platform notifier invocation for alert.
func (n *Notifier) command(alert Alert) (string, []string, bool) {
	goos := n.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	title := "repolens: " + alert.Title

	switch goos {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title "repolens" subtitle %q`, alert.Message, alert.Title)
		if alert.Level == LevelCritical {
			script += ` sound name "Basso"`
		}
		return "osascript", []string{"-e", script}, true
	case "linux":
		urgency := "normal"
		switch alert.Level {
		case LevelCritical:
			urgency = "critical"
		case LevelInfo:
			urgency = "low"
		}
		return "notify-send", []string{"-u", urgency, "-a", "repolens", title, alert.Message}, true
	default:
		return "", nil, false
	}
}

func (n *Notifier) fallback(alert Alert) error {
	w := n.Fallback
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}

func (n *Notifier) run(name string, args ...string) error {
	if n.Run != nil {
		return n.Run(name, args...)
	}
	return exec.Command(name, args...).Run()
}

func (n *Notifier) lookPath(name string) (string, error) {
	if n.LookPath != nil {
		return n.LookPath(name)
	}
	return exec.LookPath(name)
}
