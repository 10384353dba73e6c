package cli

import (
	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
	"catalog-admin/internal/mutate"
	"catalog-admin/internal/statusutil"

	"github.com/spf13/cobra"
)

var userCmds = kindCmds[model.User]{
	kind:   model.KindUser,
	store:  func(c *console) *collection.Store[model.User] { return c.catalog.Users },
	header: []string{"ID", "Name", "Email", "Contact", "Role", "Status"},
	row: func(_ *console, u model.User) []string {
		return []string{u.ID.String(), u.Name, u.Email, u.Phone, string(u.Role), statusutil.Label(u.Active)}
	},
	view: func(_ *console, u model.User) any { return u },
}

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "User commands",
	}
	cmd.AddCommand(userCmds.list(app))
	cmd.AddCommand(userCmds.show(app))
	cmd.AddCommand(newUsersAddCmd(app))
	cmd.AddCommand(newUsersUpdateCmd(app))
	cmd.AddCommand(userCmds.toggle(app))
	cmd.AddCommand(userCmds.delete(app))
	return cmd
}

type userFlags struct {
	name        string
	email       string
	contact     string
	role        string
	status      string
	address     string
	description string
	password    string
	confirm     string
}

func (f *userFlags) register(cmd *cobra.Command, adding bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.contact, "contact", "", "Contact number (at least 11 digits; non-digits are dropped)")
	cmd.Flags().StringVar(&f.role, "role", "", "Role (admin|customer; default customer)")
	cmd.Flags().StringVar(&f.address, "address", "", "Address")
	cmd.Flags().StringVar(&f.description, "description", "", "Notes")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&f.confirm, "confirm-password", "", "Password again")
	def := ""
	if adding {
		def = statusutil.Active
	}
	cmd.Flags().StringVar(&f.status, "status", def, "Status (active|inactive)")
}

// apply copies the flags the user actually passed onto form.
func (f userFlags) apply(cmd *cobra.Command, form *mutate.UserForm) error {
	ch := cmd.Flags().Changed
	if ch("name") {
		form.Name = f.name
	}
	if ch("email") {
		form.Email = f.email
	}
	if ch("contact") {
		form.Contact = f.contact
	}
	if ch("role") {
		form.Role = f.role
	}
	if ch("address") {
		form.Address = f.address
	}
	if ch("description") {
		form.Description = f.description
	}
	if ch("password") {
		form.Password = f.password
	}
	if ch("confirm-password") {
		form.ConfirmPassword = f.confirm
	}
	if ch("status") || !form.ID.Valid() {
		active, err := parseStatus(f.status)
		if err != nil {
			return err
		}
		form.Active = active
	}
	return nil
}

func newUsersAddCmd(app *App) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				var form mutate.UserForm
				if err := f.apply(cmd, &form); err != nil {
					return writeErr(cmd, err)
				}
				out, err := c.forms.SubmitUser(cmd.Context(), form)
				return submitted(cmd, app, userCmds, c, out, err)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user; only the flags given change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(c *console) error {
				if err := userCmds.load(cmd.Context(), c); err != nil {
					return err
				}
				cur, err := userCmds.lookup(cmd, c, args[0])
				if err != nil {
					return err
				}
				form := mutate.UserFormFrom(cur)
				if err := f.apply(cmd, &form); err != nil {
					return writeErr(cmd, err)
				}
				out, err := c.forms.SubmitUser(cmd.Context(), form)
				return submitted(cmd, app, userCmds, c, out, err)
			})
		},
	}
	f.register(cmd, false)
	return cmd
}
