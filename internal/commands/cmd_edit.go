package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/duet/internal/core/dispatch"
	"github.com/colonyops/duet/internal/core/scrollsync"
	"github.com/colonyops/duet/internal/core/transform"
	"github.com/colonyops/duet/internal/core/watch"
	"github.com/colonyops/duet/internal/tui"
)

// watchQuiet coalesces bursts of filesystem events from editors that
// write files in several syscalls.
const watchQuiet = 100 * time.Millisecond

type EditCmd struct {
	flags *Flags
}

// NewEditCmd creates the edit command, which is also the default action.
func NewEditCmd(flags *Flags) *EditCmd {
	return &EditCmd{flags: flags}
}

func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Open a markdown file in the editor",
		UsageText: "duet edit [file]",
		Action:    cmd.Run,
	})
	return app
}

// Run executes the editor. Exported for use as default command.
func (cmd *EditCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *EditCmd) run(_ context.Context, c *cli.Command) error {
	var (
		docPath string
		initial string
	)

	if arg := c.Args().First(); arg != "" {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		docPath = abs

		data, err := os.ReadFile(abs)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read document: %w", err)
		}
		initial = string(data)
	}

	cfg := cmd.flags.Config

	dispatcher := dispatch.New(transform.New())
	defer dispatcher.Terminate()

	coord := scrollsync.New(cfg.Sync.Options())
	defer coord.Stop()

	var watcher *watch.Watcher
	if docPath != "" {
		w, err := watch.New(docPath, watchQuiet)
		if err != nil {
			log.Warn().Err(err).Str("path", docPath).Msg("file watching disabled")
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	m := tui.New(tui.Options{
		Config:       cfg,
		Dispatcher:   dispatcher,
		Coordinator:  coord,
		Watcher:      watcher,
		DocumentPath: docPath,
		InitialText:  initial,
	})

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}
