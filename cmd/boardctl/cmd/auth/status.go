package auth

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusVerify bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		creds, err := s.Client().Session().Credentials(ctx)
		if err != nil {
			return err
		}
		if creds.IsEmpty() {
			return sdk.ErrNotAuthenticated
		}

		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Printf("Server: %s\n", cfg.ServerURL)

		if claims, err := sdk.InspectAccessToken(creds.AccessToken); err != nil {
			pterm.Warning.Printf("Access token is not a readable JWT: %v\n", err)
		} else {
			printClaims(claims)
		}
		if creds.RefreshToken == "" {
			pterm.Warning.Println("No refresh token stored; the session cannot be renewed")
		}

		// --verify asks the server, renewing the token first when it has expired.
		me, err := s.Identity(ctx, statusVerify)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tLOCKED")
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", me.ID, me.Username, me.Email, me.Role, me.IsLocked)
		w.Flush()
		return nil
	},
}

func printClaims(claims sdk.AccessClaims) {
	if claims.Subject != "" {
		pterm.Info.Printf("Subject: %s\n", claims.Subject)
	}
	if claims.ExpiresAt.IsZero() {
		return
	}
	if claims.IsExpired() {
		pterm.Warning.Printf("Access token expired at %s; it will be renewed on the next request\n", claims.ExpiresAt.Format(time.RFC1123))
		return
	}
	pterm.Info.Printf("Access token expires at %s\n", claims.ExpiresAt.Format(time.RFC1123))
}

func init() {
	statusCmd.Flags().BoolVar(&statusVerify, "verify", false, "Fetch the identity from the server instead of the local cache")
}
