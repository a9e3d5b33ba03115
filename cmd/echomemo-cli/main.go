package main

import (
	"errors"
	"fmt"
	"os"

	"echomemo/internal/client"

	"github.com/spf13/cobra"
)

func main() {
	a := &app{}
	cmd := NewRootCmd(a)
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			a.dropSession()
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree around a; exposed for tests.
func NewRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "echomemo-cli",
		Short:         "Journal notes with a short AI reply",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", getEnv("ECHOMEMO_SERVER", "http://localhost:8080"), "EchoMemo server URL")
	root.PersistentFlags().StringVar(&a.prefsPath, "prefs", "", "preferences file (default $XDG_CONFIG_HOME/echomemo/prefs.yaml)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "debug logging to stderr")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newResetPasswordCmd(a),
		newWhoamiCmd(a),
		newNotesCmd(a),
		newAskCmd(a),
		newStylesCmd(a),
		newThemeCmd(a),
	)
	return root
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
