package prefs

import (
	"fmt"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/cmd/boardctl/internal/localstate"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// PrefsCmd is the parent command for local display preferences
var PrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage local display preferences",
	Long:  `Preferences are stored locally and survive logout.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := localState(cmd)
		if err != nil {
			return err
		}
		p := state.LoadPrefs()

		collapsed := "-"
		if len(p.CollapsedCategories) > 0 {
			ids := make([]string, 0, len(p.CollapsedCategories))
			for _, id := range p.CollapsedCategories {
				ids = append(ids, fmt.Sprintf("%d", id))
			}
			collapsed = strings.Join(ids, ", ")
		}

		pterm.Info.Printf("Theme: %s\n", p.Theme)
		pterm.Info.Printf("Sidebar collapsed: %t\n", p.SidebarCollapsed)
		pterm.Info.Printf("Collapsed categories: %s\n", collapsed)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme <dark|light>",
	Short:     "Set the color theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{localstate.ThemeDark, localstate.ThemeLight},
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := localState(cmd)
		if err != nil {
			return err
		}
		requested := strings.ToLower(args[0])
		p, err := state.SetTheme(requested)
		if err != nil {
			return err
		}
		if p.Theme != requested {
			pterm.Warning.Printf("Unknown theme %q, using %s\n", args[0], p.Theme)
			return nil
		}
		pterm.Success.Printf("Theme set to %s\n", p.Theme)
		return nil
	},
}

var sidebarCmd = &cobra.Command{
	Use:       "sidebar <collapse|expand>",
	Short:     "Collapse or expand the sidebar",
	Long:      `A collapsed sidebar makes 'boardctl menu tree' print a flat list.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"collapse", "expand"},
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := localState(cmd)
		if err != nil {
			return err
		}
		p, err := state.SetSidebarCollapsed(args[0] == "collapse")
		if err != nil {
			return err
		}
		if p.SidebarCollapsed {
			pterm.Success.Println("Sidebar collapsed")
		} else {
			pterm.Success.Println("Sidebar expanded")
		}
		return nil
	},
}

func localState(cmd *cobra.Command) (*localstate.Store, error) {
	cfg := config.MustFromContext(cmd.Context())
	return cfg.ClientProvider.LocalState()
}

func init() {
	PrefsCmd.AddCommand(showCmd)
	PrefsCmd.AddCommand(themeCmd)
	PrefsCmd.AddCommand(sidebarCmd)
}
