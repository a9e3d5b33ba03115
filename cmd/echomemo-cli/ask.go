package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var styleName string
	cmd := &cobra.Command{
		Use:   "ask <content>",
		Short: "Get an AI reply without saving a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if styleName != "" {
				if err := a.styles.SetCurrentStyle(styleName); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			r := a.requester(out)
			fmt.Fprintf(out, "[%s] ", a.styles.CurrentStyleName())
			_, err := r.Request(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().StringVar(&styleName, "style", "", "switch to this style first")
	return cmd
}
