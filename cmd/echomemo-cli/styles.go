package main

import (
	"fmt"

	"echomemo/internal/api"
	"echomemo/internal/style"

	"github.com/spf13/cobra"
)

func newStylesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Manage AI reply styles",
	}
	cmd.AddCommand(
		newStylesListCmd(a),
		newStylesCurrentCmd(a),
		newStylesUseCmd(a),
		newStylesAddCmd(a),
		newStylesUpdateCmd(a),
		newStylesDeleteCmd(a),
	)
	return cmd
}

func newStylesListCmd(a *app) *cobra.Command {
	var customOnly bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show built-in and custom styles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			styles := a.styles.All(cmd.Context())
			if customOnly {
				styles = a.styles.Custom(cmd.Context())
			}
			if len(styles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no custom styles")
				return nil
			}
			printStyles(cmd.OutOrStdout(), styles, a.styles.CurrentStyleName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&customOnly, "custom", false, "only show your own styles")
	return cmd
}

func newStylesCurrentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the selected style and its prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.styles.Current(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n", s.Name, s.Color, s.Prompt)
			return nil
		},
	}
}

func newStylesUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the style used for new replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if a.styles.Resolve(cmd.Context(), name).Name != name {
				return fmt.Errorf("unknown style %q", name)
			}
			if err := a.styles.SetCurrentStyle(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "using %s\n", name)
			return nil
		},
	}
}

func styleFlags(cmd *cobra.Command, req *api.StyleRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "style name")
	cmd.Flags().StringVar(&req.Description, "description", "", "short description")
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "system prompt")
	cmd.Flags().StringVar(&req.Color, "color", "", "badge color (default "+style.NeutralColor+")")
}

func newStylesAddCmd(a *app) *cobra.Command {
	var req api.StyleRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a custom style",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.styles.Add(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", req.Name)
			return nil
		},
	}
	styleFlags(cmd, &req)
	return cmd
}

func newStylesUpdateCmd(a *app) *cobra.Command {
	var req api.StyleRequest
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a custom style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.styles.Update(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[0])
			return nil
		},
	}
	styleFlags(cmd, &req)
	return cmd
}

func newStylesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a custom style",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.styles.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
