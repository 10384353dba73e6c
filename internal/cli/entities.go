package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"catalog-admin/internal/collection"
	"catalog-admin/internal/format"
	"catalog-admin/internal/model"
	"catalog-admin/internal/mutate"
	"catalog-admin/internal/query"
	"catalog-admin/internal/statusutil"

	"github.com/spf13/cobra"
)

type entity interface {
	collection.Entity
	query.Row
}

// kindCmds builds the commands every kind shares: list, show, toggle and
// delete. add and update differ per kind and are attached by the caller.
type kindCmds[T entity] struct {
	kind   model.Kind
	store  func(*console) *collection.Store[T]
	header []string
	row    func(*console, T) []string
	view   func(*console, T) any
	// prefetch loads whatever else the views need (parent categories).
	prefetch func(context.Context, *console) error
}

func (k kindCmds[T]) load(ctx context.Context, c *console) error {
	if err := k.store(c).Fetch(ctx); err != nil {
		return reported(err)
	}
	if k.prefetch != nil {
		if err := k.prefetch(ctx, c); err != nil {
			return reported(err)
		}
	}
	return nil
}

func (k kindCmds[T]) lookup(cmd *cobra.Command, c *console, raw string) (T, error) {
	id := model.ID(strings.TrimSpace(raw))
	e, ok := k.store(c).Get(id)
	if !ok {
		var zero T
		return zero, writeErr(cmd, &collection.NotFoundError{Kind: k.kind, ID: id})
	}
	return e, nil
}

func (k kindCmds[T]) entityOut(c *console, e T) entityResult {
	return entityResult{Data: k.view(c, e), header: k.header, row: k.row(c, e)}
}

func (k kindCmds[T]) list(app *App) *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + k.kind.Plural(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				st, err := lf.state(c)
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := k.load(cmd.Context(), c); err != nil {
					return err
				}
				page := query.Run(k.store(c).Items(), st)
				views := make([]any, 0, len(page.Items))
				rows := make([][]string, 0, len(page.Items))
				for _, e := range page.Items {
					views = append(views, k.view(c, e))
					rows = append(rows, k.row(c, e))
				}
				return writeOut(cmd, app, listResult{
					Data: views,
					Meta: metaOf(page),
					table: format.Table{
						Header: k.header,
						Rows:   rows,
						Footer: footer(page),
					},
				})
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func (k kindCmds[T]) show(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one " + string(k.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				if err := k.load(cmd.Context(), c); err != nil {
					return err
				}
				e, err := k.lookup(cmd, c, args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, app, k.entityOut(c, e))
			})
		},
	}
}

func (k kindCmds[T]) toggle(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the active/inactive status of a " + string(k.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				if err := k.load(cmd.Context(), c); err != nil {
					return err
				}
				e, err := k.lookup(cmd, c, args[0])
				if err != nil {
					return err
				}
				out, err := k.store(c).ToggleStatus(cmd.Context(), e.Key())
				if err != nil {
					return reported(err)
				}
				return writeOut(cmd, app, k.entityOut(c, out))
			})
		},
	}
}

func (k kindCmds[T]) delete(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + string(k.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				id := model.ID(strings.TrimSpace(args[0]))
				if err := k.store(c).Delete(cmd.Context(), id); err != nil {
					return reported(err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
			})
		},
	}
}

// submitted writes the outcome of a form submission. Field errors go to
// stdout as {"errors": {...}} so scripts can read them.
func submitted[T entity](cmd *cobra.Command, app *App, k kindCmds[T], c *console, out T, err error) error {
	if err == nil {
		return writeOut(cmd, app, k.entityOut(c, out))
	}
	var ve *mutate.ValidationError
	if errors.As(err, &ve) {
		if werr := format.WriteJSON(cmd.OutOrStdout(), map[string]any{"errors": ve.FieldErrors()}, app.PrettyJSON); werr != nil {
			return werr
		}
		return writeErr(cmd, err)
	}
	return reported(err)
}

type listFlags struct {
	search string
	status string
	order  string
	page   int
	size   int
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive search text")
	cmd.Flags().StringVar(&f.status, "status", "all", "Status filter (all|active|inactive)")
	cmd.Flags().StringVar(&f.order, "order", "desc", "Sort by id (desc|asc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (clamped to the last page)")
	cmd.Flags().IntVar(&f.size, "page-size", 0, "Entries per page (default: CATADMIN_PAGE_SIZE)")
}

func (f listFlags) state(c *console) (query.State, error) {
	st := query.DefaultState()
	var err error
	if st.Status, err = statusutil.ParseFilter(f.status); err != nil {
		return st, err
	}
	if st.Order, err = query.ParseOrder(f.order); err != nil {
		return st, err
	}
	st.Search = f.search
	st.Page = f.page
	st.PageSize = c.cfg.PageSize
	if f.size > 0 {
		st.PageSize = f.size
	}
	return st, nil
}

type listMeta struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	From       int `json:"from"`
	To         int `json:"to"`
}

func metaOf[T query.Row](p query.Page[T]) listMeta {
	return listMeta{Total: p.Total, TotalPages: p.TotalPages, Page: p.Page, PageSize: p.PageSize, From: p.From, To: p.To}
}

func footer[T query.Row](p query.Page[T]) string {
	return fmt.Sprintf("Showing %d to %d of %d entries (page %d of %d)", p.From, p.To, p.Total, p.Page, p.TotalPages)
}

type listResult struct {
	Data  []any    `json:"data"`
	Meta  listMeta `json:"meta"`
	table format.Table
}

func (r listResult) Table() format.Table { return r.table }

type entityResult struct {
	Data   any `json:"data"`
	header []string
	row    []string
}

// Table renders one entity as field/value pairs.
func (r entityResult) Table() format.Table {
	t := format.Table{Header: []string{"Field", "Value"}}
	for i, h := range r.header {
		v := ""
		if i < len(r.row) {
			v = r.row[i]
		}
		t.Rows = append(t.Rows, []string{h, v})
	}
	return t
}

func parseStatus(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case statusutil.Active:
		return true, nil
	case statusutil.Inactive:
		return false, nil
	default:
		return false, fmt.Errorf("invalid status: %q (want active|inactive)", s)
	}
}

func readAttachment(path string) (*model.Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("image is empty: %s", path)
	}
	name := filepath.Base(path)
	return &model.Attachment{
		Filename:    name,
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
		Data:        b,
	}, nil
}
