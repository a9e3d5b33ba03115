package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/client"
	"echomemo/internal/notesview"

	"github.com/spf13/cobra"
)

func newNotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List, search and edit notes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.requireLogin()
		},
	}
	cmd.AddCommand(
		newNotesListCmd(a),
		newNotesFindCmd(a),
		newNotesAddCmd(a),
		newNotesEditCmd(a),
		newNotesDeleteCmd(a),
		newNotesHeatmapCmd(a),
	)
	return cmd
}

func newNotesListCmd(a *app) *cobra.Command {
	var keyword, date string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show notes, newest activity first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := a.controller()
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			if keyword != "" {
				if err := ctrl.Search(cmd.Context(), keyword); err != nil {
					return err
				}
			}
			if date != "" {
				if err := ctrl.SelectDate(date); err != nil {
					return err
				}
			}
			printNotes(cmd.OutOrStdout(), ctrl.Displayed(), a.styles.ColorOf)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyword, "search", "s", "", "keyword to search content and AI replies")
	cmd.Flags().StringVar(&date, "date", "", "only notes created on this day (YYYY-MM-DD)")
	return cmd
}

func newNotesFindCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search as you type: each line on stdin replaces the keyword",
		Long: "Reads keywords from stdin, one per line, and searches once input pauses.\n" +
			"The last keyword is searched immediately at end of input.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var mu sync.Mutex
			var expired error
			ctrl := notesview.NewController(a.client,
				notesview.WithLogger(a.log),
				notesview.WithDebounce(debounce),
				notesview.OnChange(func(v notesview.View) {
					mu.Lock()
					defer mu.Unlock()
					if v.SearchActive {
						fmt.Fprintf(out, "== %q: %d\n", v.Keyword, len(v.Notes))
					} else {
						fmt.Fprintf(out, "== all: %d\n", len(v.Notes))
					}
					printNotes(out, v.Notes, a.styles.ColorOf)
				}),
				notesview.OnError(func(err error) {
					mu.Lock()
					defer mu.Unlock()
					if errors.Is(err, client.ErrSessionExpired) {
						expired = err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "search failed: %v\n", err)
				}),
			)
			defer ctrl.Close()

			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}

			var last string
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				last = sc.Text()
				ctrl.Type(ctx, last)
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read keywords: %w", err)
			}

			if err := ctrl.Search(ctx, last); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return expired
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", notesview.SearchDebounce, "quiet period before a keyword is searched")
	return cmd
}

func newNotesAddCmd(a *app) *cobra.Command {
	var noAI bool
	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Write a note; the current AI style replies before saving",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			req := api.NoteRequest{Content: content}
			if !noAI {
				var err error
				if req, err = a.reply(cmd.Context(), out, req); err != nil {
					return err
				}
			}

			n, err := a.controller().Add(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "saved %s\n", n.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "save without asking for an AI reply")
	return cmd
}

func newNotesEditCmd(a *app) *cobra.Command {
	var reask bool
	cmd := &cobra.Command{
		Use:   "edit <id> <content>",
		Short: "Replace the content of a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, content := args[0], strings.Join(args[1:], " ")
			out := cmd.OutOrStdout()

			ctrl := a.controller()
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			old, ok := ctrl.Find(id)
			if !ok {
				return fmt.Errorf("note %s not found", id)
			}

			req := api.NoteRequest{Content: content, AIResponse: old.AIResponse, AIStyle: old.AIStyle}
			if reask {
				var err error
				if req, err = a.reply(cmd.Context(), out, req); err != nil {
					return err
				}
			}

			if _, err := ctrl.Update(cmd.Context(), id, req); err != nil {
				return err
			}
			fmt.Fprintf(out, "updated %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reask, "reask", false, "ask the AI again for the new content")
	return cmd
}

func newNotesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.controller().Delete(cmd.Context(), args[0]); err != nil {
				if client.IsStatus(err, 404) {
					return fmt.Errorf("note %s not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newNotesHeatmapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "Notes per day over the last 13 weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := a.client.ListNotes(cmd.Context())
			if err != nil {
				return err
			}
			// notes are already shifted to display time, so "today" is too
			today := time.Now().UTC().Add(client.DisplayOffset)
			printHeatmap(cmd.OutOrStdout(), notesview.Heatmap(notes, today, time.UTC))
			return nil
		},
	}
}
