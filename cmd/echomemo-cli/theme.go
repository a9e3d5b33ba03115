package main

import (
	"fmt"

	"echomemo/internal/prefs"

	"github.com/spf13/cobra"
)

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [" + prefs.ThemeLight + "|" + prefs.ThemeDark + "|toggle]",
		Short:     "Show or change the theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{prefs.ThemeLight, prefs.ThemeDark, "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, a.prefs.Theme())
				return nil
			}
			if args[0] == "toggle" {
				next, err := a.prefs.ToggleTheme()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, next)
				return nil
			}
			if err := a.prefs.SetTheme(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, args[0])
			return nil
		},
	}
}
