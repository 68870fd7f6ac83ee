package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/colonyops/duet/internal/core/config"
)

// ConfigCheck validates the configuration file at Path.
type ConfigCheck struct {
	Path string
}

func (c ConfigCheck) Name() string { return "Configuration" }

func (c ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.Path); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%s not found, defaults apply", c.Path),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusPass,
			Detail: c.Path,
		})
	}

	cfg, err := config.Load(c.Path)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "config valid",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items,
		CheckItem{Label: "config valid", Status: StatusPass},
		CheckItem{Label: "theme", Status: StatusPass, Detail: cfg.Preview.Theme},
		CheckItem{Label: "code style", Status: StatusPass, Detail: cfg.Preview.CodeStyle},
	)
	return result
}

// LogFileCheck verifies the log destination is writable.
type LogFileCheck struct {
	Path string
}

func (c LogFileCheck) Name() string { return "Logging" }

func (c LogFileCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	dir := filepath.Dir(c.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "log directory",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%s will be created on first run", dir),
		})
		return result
	}

	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "log file writable",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	f.Close()

	result.Items = append(result.Items, CheckItem{
		Label:  "log file writable",
		Status: StatusPass,
		Detail: c.Path,
	})
	return result
}

// TerminalCheck reports whether stdout is an interactive terminal,
// which the editor requires.
type TerminalCheck struct{}

func (c TerminalCheck) Name() string { return "Terminal" }

func (c TerminalCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		result.Items = append(result.Items, CheckItem{
			Label:  "interactive terminal",
			Status: StatusWarn,
			Detail: "stdout is not a TTY; the editor will not start",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "interactive terminal",
		Status: StatusPass,
	})

	if w, h, err := term.GetSize(fd); err == nil {
		status := StatusPass
		detail := fmt.Sprintf("%dx%d", w, h)
		if w < 60 {
			status = StatusWarn
			detail += " (narrow; panes may truncate)"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "terminal size",
			Status: status,
			Detail: detail,
		})
	}
	return result
}
