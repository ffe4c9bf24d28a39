package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/form"
	"github.com/todo-1m/webclient/internal/todo"
)

const deadlineLayout = "2006-01-02 15:04"

func newListCmd(opts *options) *cobra.Command {
	var (
		sortKey                      string
		desc                         bool
		status, priority, start, end string
		user                         string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos, optionally filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			key, ok := todo.ParseSortKey(sortKey)
			if !ok {
				return fmt.Errorf("unknown sort key %q", sortKey)
			}
			filter, err := todo.ParseFilter(status, priority, start, end, loc)
			if err != nil {
				return err
			}

			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			records, err := opts.client().ListTodos(ctx, contracts.ID(user))
			if err != nil {
				return fmt.Errorf("list todos: %w", err)
			}

			todos := todo.NormalizeAll(records, loc)
			if !filter.IsEmpty() {
				todos = todo.Filter(todos, filter)
			}
			dir := todo.Ascending
			if desc {
				dir = todo.Descending
			}
			todos = todo.Sort(todos, todo.SortConfig{Key: key, Direction: dir})
			opts.logger(cmd).Debug("listed todos", "fetched", len(records), "shown", len(todos))
			return writeTodos(cmd, todos, loc)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&sortKey, "sort", "", "sort by title, description, status, priority, deadline or tag")
	fs.BoolVar(&desc, "desc", false, "sort descending")
	fs.StringVar(&status, "status", "", "only DONE or NOT_DONE todos")
	fs.StringVar(&priority, "priority", "", "only todos with this priority")
	fs.StringVar(&start, "start", "", "earliest deadline (YYYY-MM-DD or ISO-8601)")
	fs.StringVar(&end, "end", "", "latest deadline (YYYY-MM-DD or ISO-8601)")
	fs.StringVar(&user, "user", "", "only todos of this user id")
	return cmd
}

func writeTodos(cmd *cobra.Command, todos []todo.Todo, loc *time.Location) error {
	rows := make([][]string, 0, len(todos))
	for _, t := range todos {
		deadline := "-"
		if t.HasDeadline {
			deadline = t.Deadline.In(loc).Format(deadlineLayout)
		}
		tags := strings.Join(t.Tags, ", ")
		if tags == "" {
			tags = "-"
		}
		rows = append(rows, []string{t.ID.String(), t.Title, string(t.Status), string(t.Priority), deadline, tags})
	}
	return writeTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "STATUS", "PRIORITY", "DEADLINE", "TAGS"}, rows)
}

// fieldFlags are the todo form fields settable from the command line.
type fieldFlags struct {
	title       string
	description string
	status      string
	priority    string
	deadline    string
	tags        string
	completed   bool
}

func (f *fieldFlags) register(fs *pflag.FlagSet, withCompleted bool) {
	fs.StringVar(&f.title, "title", "", "todo title")
	fs.StringVar(&f.description, "description", "", "todo description")
	fs.StringVar(&f.status, "status", string(todo.StatusNotDone), "DONE or NOT_DONE")
	fs.StringVar(&f.priority, "priority", string(todo.PriorityLow), "LOW, MEDIUM or HIGH")
	fs.StringVar(&f.deadline, "deadline", "", "deadline as YYYY-MM-DDTHH:MM in --timezone, empty to clear")
	fs.StringVar(&f.tags, "tags", "", "comma separated tags")
	if withCompleted {
		fs.BoolVar(&f.completed, "completed", false, "mark the todo completed")
	}
}

// apply copies the flags the user actually set into rec, leaving the
// other fields as the reconciler holds them.
func (f *fieldFlags) apply(fs *pflag.FlagSet, rec *form.Reconciler) {
	if fs.Changed("title") {
		rec.SetTitle(f.title)
	}
	if fs.Changed("description") {
		rec.SetDescription(f.description)
	}
	if fs.Changed("status") {
		rec.SetStatus(f.status)
	}
	if fs.Changed("priority") {
		rec.SetPriority(f.priority)
	}
	if fs.Changed("deadline") {
		rec.SetDeadline(strings.TrimSpace(f.deadline))
	}
	if fs.Changed("tags") {
		rec.SetTags(f.tags)
	}
	if fs.Lookup("completed") != nil && fs.Changed("completed") {
		rec.SetCompleted(f.completed)
	}
}

func validateDeadline(raw string, loc *time.Location) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := time.ParseInLocation(form.DeadlineInputLayout, raw, loc); err != nil {
		return fmt.Errorf("invalid --deadline %q, want YYYY-MM-DDTHH:MM", raw)
	}
	return nil
}

func submitError(err error) error {
	if errors.Is(err, form.ErrTitleRequired) {
		return errors.New("--title must not be blank")
	}
	return err
}

func newCreateCmd(opts *options) *cobra.Command {
	var fields fieldFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			if err := validateDeadline(fields.deadline, loc); err != nil {
				return err
			}
			rec := form.New(loc)
			fields.apply(cmd.Flags(), rec)
			sub, err := rec.Submit()
			if err != nil {
				return submitError(err)
			}

			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			created, err := opts.client().CreateTodo(ctx, sub.Payload)
			rec.Complete(err)
			if err != nil {
				return fmt.Errorf("create todo: %w", err)
			}
			if created.ID.IsZero() {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "created")
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", created.ID)
			return err
		},
	}
	fields.register(cmd.Flags(), false)
	return cmd
}

func newUpdateCmd(opts *options) *cobra.Command {
	var fields fieldFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a todo; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			if err := validateDeadline(fields.deadline, loc); err != nil {
				return err
			}
			id := contracts.ID(args[0])
			client := opts.client()

			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			current, err := client.GetTodo(ctx, id)
			if err != nil {
				return fmt.Errorf("load todo %s: %w", id, err)
			}

			rec := form.New(loc)
			existing := todo.Normalize(current, loc)
			existing.ID = id
			rec.EnterEdit(existing)
			fields.apply(cmd.Flags(), rec)
			sub, err := rec.Submit()
			if err != nil {
				return submitError(err)
			}

			_, err = client.UpdateTodo(ctx, sub.TargetID, sub.Payload)
			rec.Complete(err)
			if err != nil {
				return fmt.Errorf("update todo %s: %w", id, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", sub.TargetID)
			return err
		},
	}
	fields.register(cmd.Flags(), true)
	return cmd
}

func newToggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completion of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			if err := opts.client().ToggleTodo(ctx, contracts.ID(args[0])); err != nil {
				return fmt.Errorf("toggle todo %s: %w", args[0], err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "toggled %s\n", args[0])
			return err
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			if err := opts.client().DeleteTodo(ctx, contracts.ID(args[0])); err != nil {
				return fmt.Errorf("delete todo %s: %w", args[0], err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}
