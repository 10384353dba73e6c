package cli

import (
	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
	"catalog-admin/internal/mutate"
	"catalog-admin/internal/statusutil"

	"github.com/spf13/cobra"
)

var categoryCmds = kindCmds[model.Category]{
	kind:   model.KindCategory,
	store:  func(c *console) *collection.Store[model.Category] { return c.catalog.Categories },
	header: []string{"ID", "Name", "Description", "Image", "Status"},
	row: func(_ *console, cat model.Category) []string {
		return []string{cat.ID.String(), cat.Name, cat.Description, cat.Image, statusutil.Label(cat.Active)}
	},
	view: func(_ *console, cat model.Category) any { return cat },
}

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Category commands",
	}
	cmd.AddCommand(categoryCmds.list(app))
	cmd.AddCommand(categoryCmds.show(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesUpdateCmd(app))
	cmd.AddCommand(categoryCmds.toggle(app))
	cmd.AddCommand(categoryCmds.delete(app))
	return cmd
}

type categoryFlags struct {
	name        string
	description string
	status      string
	image       string
}

func (f *categoryFlags) register(cmd *cobra.Command, adding bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Category name")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.image, "image", "", "Path of an image to upload")
	def := ""
	if adding {
		def = statusutil.Active
	}
	cmd.Flags().StringVar(&f.status, "status", def, "Status (active|inactive)")
}

func (f categoryFlags) apply(cmd *cobra.Command, form *mutate.CategoryForm) error {
	ch := cmd.Flags().Changed
	if ch("name") {
		form.Name = f.name
	}
	if ch("description") {
		form.Description = f.description
	}
	if ch("status") || !form.ID.Valid() {
		active, err := parseStatus(f.status)
		if err != nil {
			return err
		}
		form.Active = active
	}
	img, err := readAttachment(f.image)
	if err != nil {
		return err
	}
	form.Image = img
	return nil
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	var f categoryFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				var form mutate.CategoryForm
				if err := f.apply(cmd, &form); err != nil {
					return writeErr(cmd, err)
				}
				out, err := c.forms.SubmitCategory(cmd.Context(), form)
				return submitted(cmd, app, categoryCmds, c, out, err)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newCategoriesUpdateCmd(app *App) *cobra.Command {
	var f categoryFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a category; only the flags given change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				if err := categoryCmds.load(cmd.Context(), c); err != nil {
					return err
				}
				cur, err := categoryCmds.lookup(cmd, c, args[0])
				if err != nil {
					return err
				}
				form := mutate.CategoryFormFrom(cur)
				if err := f.apply(cmd, &form); err != nil {
					return writeErr(cmd, err)
				}
				out, err := c.forms.SubmitCategory(cmd.Context(), form)
				return submitted(cmd, app, categoryCmds, c, out, err)
			})
		},
	}
	f.register(cmd, false)
	return cmd
}
