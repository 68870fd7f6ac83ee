package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/duet/internal/core/styles"
)

const defaultRenderWidth = 80

type RenderCmd struct {
	flags *Flags
	width int
}

// NewRenderCmd creates the render command, a one-shot markdown renderer
// for piping documents to the terminal without opening the editor.
func NewRenderCmd(flags *Flags) *RenderCmd {
	return &RenderCmd{flags: flags}
}

func (cmd *RenderCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "render",
		Usage:     "Render markdown files to the terminal",
		UsageText: "duet render <file|glob>...",
		Description: `Renders one or more markdown files as styled terminal output.

Arguments may be literal paths or doublestar globs:

    duet render README.md
    duet render 'docs/**/*.md'`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap width (defaults to terminal width)",
				Destination: &cmd.width,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RenderCmd) run(_ context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("no files given. Run 'duet render --help' for usage")
	}

	paths, err := expandGlobs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(cmd.renderWidth()),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	w := c.Root().Writer
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		out, err := renderer.Render(string(data))
		if err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}

		if len(paths) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "── %s\n", path)
		}
		fmt.Fprint(w, out)
	}
	return nil
}

func (cmd *RenderCmd) renderWidth() int {
	if cmd.width > 0 {
		return cmd.width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultRenderWidth
}

// expandGlobs resolves each argument, treating anything with glob
// metacharacters as a doublestar pattern and everything else as a
// literal path.
func expandGlobs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !hasGlobMeta(arg) {
			paths = append(paths, arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func hasGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
