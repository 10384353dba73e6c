package cli

import (
	"errors"
	"strings"

	"catalog-admin/internal/model"
	"catalog-admin/internal/tui"

	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "browse <users|categories|subcategories>",
		Short:     "Browse one kind interactively",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"users", "categories", "subcategories"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withSession(cmd, app, func(c *console) error {
				hooks := tui.NewHooks()
				deps := c.deps
				deps.Notify = hooks
				deps.Nav = hooks
				deps.RedirectDelay = c.cfg.RedirectDelay
				c.rebind(deps)

				err := tui.Run(cmd.Context(), tui.Options{
					Catalog:  c.catalog,
					Kind:     kind,
					PageSize: c.cfg.PageSize,
					Hooks:    hooks,
				})
				if err != nil {
					return writeErr(cmd, err)
				}
				return nil
			})
		},
	}
}

func parseKind(s string) (model.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "users":
		return model.KindUser, nil
	case "category", "categories":
		return model.KindCategory, nil
	case "subcategory", "subcategories":
		return model.KindSubcategory, nil
	default:
		return "", errors.New("unknown kind: " + s + " (want users|categories|subcategories)")
	}
}
