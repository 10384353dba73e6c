package cli

import (
	"context"

	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
	"catalog-admin/internal/mutate"
	"catalog-admin/internal/statusutil"

	"github.com/spf13/cobra"
)

// subcategoryView adds the parent's display name to the JSON output.
type subcategoryView struct {
	model.Subcategory
	CategoryName string `json:"categoryName"`
}

var subcategoryCmds = kindCmds[model.Subcategory]{
	kind:   model.KindSubcategory,
	store:  func(c *console) *collection.Store[model.Subcategory] { return c.catalog.Subcategories },
	header: []string{"ID", "Name", "Category", "Image", "Status"},
	row: func(c *console, s model.Subcategory) []string {
		return []string{s.ID.String(), s.Name, c.catalog.CategoryName(s.CategoryID), s.Image, statusutil.Label(s.Active)}
	},
	view: func(c *console, s model.Subcategory) any {
		return subcategoryView{Subcategory: s, CategoryName: c.catalog.CategoryName(s.CategoryID)}
	},
	prefetch: fetchCategories,
}

func fetchCategories(ctx context.Context, c *console) error {
	return c.catalog.Categories.Fetch(ctx)
}

func newSubcategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subcategories",
		Aliases: []string{"subcategory"},
		Short:   "Subcategory commands",
	}
	cmd.AddCommand(subcategoryCmds.list(app))
	cmd.AddCommand(subcategoryCmds.show(app))
	cmd.AddCommand(newSubcategoriesAddCmd(app))
	cmd.AddCommand(newSubcategoriesUpdateCmd(app))
	cmd.AddCommand(subcategoryCmds.toggle(app))
	cmd.AddCommand(subcategoryCmds.delete(app))
	return cmd
}

type subcategoryFlags struct {
	name        string
	category    string
	description string
	status      string
	image       string
}

func (f *subcategoryFlags) register(cmd *cobra.Command, adding bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Subcategory name")
	cmd.Flags().StringVar(&f.category, "category", "", "Parent category id")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.image, "image", "", "Path of an image to upload")
	def := ""
	if adding {
		def = statusutil.Active
	}
	cmd.Flags().StringVar(&f.status, "status", def, "Status (active|inactive)")
}

func (f subcategoryFlags) apply(cmd *cobra.Command, form *mutate.SubcategoryForm) error {
	ch := cmd.Flags().Changed
	if ch("name") {
		form.Name = f.name
	}
	if ch("category") {
		form.CategoryID = model.ID(f.category)
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

func newSubcategoriesAddCmd(app *App) *cobra.Command {
	var f subcategoryFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a subcategory under an existing category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				var form mutate.SubcategoryForm
				if err := f.apply(cmd, &form); err != nil {
					return writeErr(cmd, err)
				}
				// The parent is checked against the categories loaded here.
				if err := fetchCategories(cmd.Context(), c); err != nil {
					return reported(err)
				}
				out, err := c.forms.SubmitSubcategory(cmd.Context(), form)
				return submitted(cmd, app, subcategoryCmds, c, out, err)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newSubcategoriesUpdateCmd(app *App) *cobra.Command {
	var f subcategoryFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a subcategory; only the flags given change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				if err := subcategoryCmds.load(cmd.Context(), c); err != nil {
					return err
				}
				cur, err := subcategoryCmds.lookup(cmd, c, args[0])
				if err != nil {
					return err
				}
				form := mutate.SubcategoryFormFrom(cur)
				if err := f.apply(cmd, &form); err != nil {
					return writeErr(cmd, err)
				}
				out, err := c.forms.SubmitSubcategory(cmd.Context(), form)
				return submitted(cmd, app, subcategoryCmds, c, out, err)
			})
		},
	}
	f.register(cmd, false)
	return cmd
}
