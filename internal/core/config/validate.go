package config

import (
	"fmt"
	"strings"

	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/duet/internal/core/styles"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("sync.debounce_ms", c.Sync.DebounceMS, positive),
		criterio.Run("sync.hold_timeout_ms", c.Sync.HoldTimeoutMS, positive),
		criterio.Run("sync.hint_timeout_ms", c.Sync.HintTimeoutMS, positive),
		criterio.Run("sync.release_grace_ms", c.Sync.ReleaseGraceMS, positive),
		criterio.Run("preview.code_style", c.Preview.CodeStyle, knownChromaStyle),
		criterio.Run("preview.theme", c.Preview.Theme, knownTheme),
		criterio.Run("preview.width", c.Preview.Width, nonNegative),
		criterio.Run("editor.tab_width", c.Editor.TabWidth, positive),
	)
}

func positive(v int) error {
	if v <= 0 {
		return fmt.Errorf("must be positive, got %d", v)
	}
	return nil
}

func nonNegative(v int) error {
	if v < 0 {
		return fmt.Errorf("must not be negative, got %d", v)
	}
	return nil
}

func knownChromaStyle(name string) error {
	if name == "" {
		return nil
	}
	if chromastyles.Get(name) == chromastyles.Fallback && name != chromastyles.Fallback.Name {
		return fmt.Errorf("unknown chroma style: %s", name)
	}
	return nil
}

func knownTheme(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q, valid themes: %s", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}
