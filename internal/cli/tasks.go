package cli

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wimitasks/internal/board"
	"wimitasks/internal/form"
	"wimitasks/internal/item"
	"wimitasks/internal/models"
	"wimitasks/internal/render"
	"wimitasks/internal/tui"
)

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

// printErrors writes field errors in a stable order.
func printErrors(w io.Writer, errs form.Errors) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, errs[k])
	}
}

func (app *App) renderOptions() render.Options {
	return render.Options{Today: form.Today(time.Now()), ShowIDs: true}
}

func (app *App) itemController(t models.Task, c *client, agg *board.Aggregator) *item.Controller {
	return item.New(t, c.api, agg, item.WithLogger(app.logger), item.WithNoticeTTL(app.cfg.UI.NoticeTTL))
}

func newBoardCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show your lists and their tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			agg, _, err := c.loadBoard(cmd.Context(), app)
			if err != nil {
				return err
			}
			opts := app.renderOptions()
			if !all {
				opts.Limit = app.cfg.UI.ListLimit
			}
			v := agg.View()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, render.Board(v, opts))
			fmt.Fprintln(out, render.Summary(board.Summarize(v)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every task instead of ui.list_limit per list")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			agg, _, err := c.loadBoard(cmd.Context(), app)
			if err != nil {
				return err
			}
			t, list, err := findTask(agg, id)
			if err != nil {
				return err
			}
			out, err := render.Detail(t, list, app.renderOptions(), 80)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var listID int64
	var description, priority, due string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			agg, _, err := c.loadBoard(cmd.Context(), app)
			if err != nil {
				return err
			}

			f := form.NewController(c.api, agg, agg.View().Lists(), form.WithLogger(app.logger))
			f.SetTitle(strings.Join(args, " "))
			f.SetDescription(description)
			f.SetDueDate(due)
			if priority != "" {
				f.SetPriority(models.Priority(strings.ToLower(priority)))
			}
			if listID != 0 {
				f.SetList(listID)
			}
			if errs := f.Errors(); !errs.Valid() {
				fmt.Fprintln(cmd.ErrOrStderr(), "invalid task:")
				printErrors(cmd.ErrOrStderr(), errs)
				return form.ErrNotReady
			}

			t, err := f.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().Int64Var(&listID, "list", 0, "list id (default: most recent list)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Mark a task completed, or not completed again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			agg, _, err := c.loadBoard(cmd.Context(), app)
			if err != nil {
				return err
			}
			t, _, err := findTask(agg, id)
			if err != nil {
				return err
			}

			ctrl := app.itemController(t, c, agg)
			if err := ctrl.ToggleCompleted(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.TaskLine(ctrl.Task(), app.renderOptions()))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var title, description, priority, due string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change title, description, priority or due date of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			agg, _, err := c.loadBoard(cmd.Context(), app)
			if err != nil {
				return err
			}
			t, _, err := findTask(agg, id)
			if err != nil {
				return err
			}

			ctrl := app.itemController(t, c, agg)
			in := ctrl.OpenEdit()
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = title
			}
			if flags.Changed("description") {
				in.Description = description
			}
			if flags.Changed("priority") {
				in.Priority = strings.ToLower(priority)
			}
			if flags.Changed("due") {
				in.DueDate = due
			}
			if clearDue {
				in.DueDate = ""
			}
			if errs := ctrl.EditErrors(in); !errs.Valid() {
				fmt.Fprintln(cmd.ErrOrStderr(), "invalid task:")
				printErrors(cmd.ErrOrStderr(), errs)
				return form.ErrNotReady
			}
			if err := ctrl.Edit(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.TaskLine(ctrl.Task(), app.renderOptions()))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "new due date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			agg, _, err := c.loadBoard(cmd.Context(), app)
			if err != nil {
				return err
			}
			t, _, err := findTask(agg, id)
			if err != nil {
				return err
			}

			ctrl := app.itemController(t, c, agg)
			ctrl.RequestDelete()
			if !yes {
				answer, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					fmt.Sprintf("Delete %q? This cannot be undone. [y/N] ", t.Title))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					ctrl.CancelDelete()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}
			if err := ctrl.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			id, err := c.identity()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Config{
				Aggregator: board.New(c.api, board.WithLogger(app.logger)),
				API:        c.api,
				Owner:      id,
				NoticeTTL:  app.cfg.UI.NoticeTTL,
			})
		},
	}
}
