package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/intraboard/board/cmd/boardctl/cmd/auth"
	"github.com/intraboard/board/cmd/boardctl/cmd/board"
	"github.com/intraboard/board/cmd/boardctl/cmd/menu"
	"github.com/intraboard/board/cmd/boardctl/cmd/prefs"
	"github.com/intraboard/board/cmd/boardctl/cmd/role"
	"github.com/intraboard/board/cmd/boardctl/cmd/user"
	"github.com/intraboard/board/cmd/boardctl/internal/client"
	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/cmd/boardctl/internal/logging"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL      string
	home           string
	logLevel       string
	timeout        time.Duration
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "boardctl - intranet board client",
	Long: `boardctl is the command-line client for the intranet board service.
Use it to sign in, browse the navigation menu, and administer menus and
role permissions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("server") {
			cfg.ServerURL = serverURL
		}
		if flags.Changed("home") {
			cfg.Home = home
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if flags.Changed("timeout") {
			cfg.Timeout = timeout
		}
		if nonInteractive {
			cfg.NonInteractive = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		cfg.Logger = logger
		cfg.ClientProvider = client.NewProvider(cfg.ClientOptions())

		active = cfg
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
		return nil
	},
}

// active is the configuration of the running command. It is released by
// shutdown, which cobra runs after every command, including failed ones.
var active *config.GlobalConfig

func shutdown() {
	if active == nil {
		return
	}
	cfg := active
	active = nil
	if err := cfg.ClientProvider.Close(); err != nil {
		cfg.Logger.Warn("failed to close client provider", zap.Error(err))
	}
	_ = cfg.Logger.Sync()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func reportError(err error) {
	switch {
	case sdk.IsSessionEnded(err), errors.Is(err, sdk.ErrNotAuthenticated):
		pterm.Error.Println(err)
		pterm.Info.Println("Your session has ended. Run `boardctl auth login` to sign in again.")
	default:
		var apiErr *sdk.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == sdk.KindServer {
			pterm.Error.Printf("server error (%d): %s\n", apiErr.Status, apiErr.Message)
			return
		}
		fmt.Fprintln(os.Stderr, err)
	}
}

func init() {
	cobra.OnFinalize(shutdown)

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", config.DefaultServerURL, "Board API server URL (also set via BOARDCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&home, "home", "", "Directory for credentials and caches (default ~/.boardctl, also BOARDCTL_HOME)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via BOARDCTL_NON_INTERACTIVE=1)")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(menu.MenuCmd)
	rootCmd.AddCommand(role.RoleCmd)
	rootCmd.AddCommand(board.BoardCmd)
	rootCmd.AddCommand(prefs.PrefsCmd)
	rootCmd.AddCommand(user.UserCmd)
}
