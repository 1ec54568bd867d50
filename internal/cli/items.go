package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"pantry-cli/internal/format"
	"pantry-cli/internal/model"
	"pantry-cli/internal/mutate"
	"pantry-cli/internal/query"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Inventory items",
	}

	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))
	cmd.AddCommand(newItemsToggleCmd(app))
	cmd.AddCommand(newItemsSetQuantityCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))

	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var name string
	var quantity int
	var expiry string
	var location string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add stock (merges into an open item with the same name and expiry)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			exp, err := parseExpiry(expiry, svc.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := svc.Add(cmdContext(cmd), mutate.AddInput{
				Name:     name,
				Quantity: quantity,
				Expiry:   exp,
				Location: location,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Skipped {
				return writeOut(cmd, app, map[string]any{
					"data":   map[string]any{"skipped": true},
					"_hints": []string{"a name is required and --quantity must be at least 1"},
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"item":   res.Item,
					"merged": res.Merged,
				},
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Item name")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity to add")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Expiry date (YYYY-MM-DD, today, tomorrow, +Nd)")
	cmd.Flags().StringVar(&location, "location", "", "Storage location (free text)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var filter string
	var search string
	var today string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items (open first, soonest expiry first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := model.ParseFilter(filter)
			if !ok {
				return writeErr(cmd, fmt.Errorf("invalid --filter %q (expected all|completed|uncompleted)", filter))
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if today != "" {
				t, err := time.ParseInLocation(model.DateLayout, today, time.Local)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --today %q (expected YYYY-MM-DD)", today))
				}
				svc.Now = func() time.Time { return t }
			}
			return writeOut(cmd, app, map[string]any{"data": listView(svc.View(f, search))})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "Completion filter (all|completed|uncompleted)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive name search")
	cmd.Flags().StringVar(&today, "today", "", "Reference date for expiry alerts (YYYY-MM-DD, default: today)")
	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item with its expiry alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			it, err := svc.Find(id)
			if err != nil {
				return writeErr(cmd, err)
			}
			row := query.Row{Item: it}
			if tier, days, ok := query.Alert(it, svc.Now()); ok {
				row.Tier = tier
				row.DaysLeft = &days
			}
			return writeOut(cmd, app, map[string]any{"data": row})
		},
	}
	return cmd
}

func newItemsToggleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip an item between open and completed (passphrase-gated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := svc.Toggle(cmdContext(cmd), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, resultEnvelope(id, res))
		},
	}
	return cmd
}

func newItemsSetQuantityCmd(app *App) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "set-quantity <id>",
		Short: "Set an item's quantity; 0 completes it (passphrase-gated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("quantity") {
				return writeErr(cmd, errors.New("missing --quantity"))
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := svc.SetQuantity(cmdContext(cmd), id, quantity)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, resultEnvelope(id, res))
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 0, "New quantity")
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item (passphrase-gated, asks for confirmation unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := svc.Delete(cmdContext(cmd), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":      id,
					"deleted": res.Changed,
				},
			})
		},
	}
	return cmd
}

// resultEnvelope reports a gated mutation. A missing id is a no-op, surfaced as changed=false.
func resultEnvelope(id int64, res mutate.Result) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"id":      id,
			"changed": res.Changed,
			"item":    res.Item,
		},
	}
}

// itemList is the `items list` payload; it also renders as a table.
type itemList struct {
	query.View
}

func listView(v query.View) itemList { return itemList{View: v} }

var tierRowStyles = map[model.AlertTier]lipgloss.Style{
	model.TierCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	model.TierWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	model.TierSafe:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}

var completedRowStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)

func (l itemList) Table() format.Table {
	t := format.Table{
		Headers:   []string{"ID", "NAME", "QTY", "EXPIRY", "LOCATION", "STATUS"},
		RowStyles: map[int]lipgloss.Style{},
		Empty:     "No items.",
	}
	for i, r := range l.Rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.Item.ID, 10),
			r.Item.Name,
			strconv.Itoa(r.Item.Quantity),
			r.Item.Expiry,
			r.Item.Location,
			rowStatus(r),
		})
		if r.Item.IsCompleted {
			t.RowStyles[i] = completedRowStyle
		} else if st, ok := tierRowStyles[r.Tier]; ok {
			t.RowStyles[i] = st
		}
	}
	return t
}

func rowStatus(r query.Row) string {
	if r.Item.IsCompleted {
		return "done"
	}
	if r.DaysLeft == nil {
		return ""
	}
	return alertText(*r.DaysLeft)
}

// alertText is the human-readable expiry notice for an open item.
func alertText(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("expired %dd ago", -days)
	case days == 0:
		return "expires today"
	case days == 1:
		return "expires tomorrow"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
