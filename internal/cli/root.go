package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"catalog-admin/internal/collection"
	"catalog-admin/internal/config"
	"catalog-admin/internal/format"
	"catalog-admin/internal/logx"
	"catalog-admin/internal/mutate"
	"catalog-admin/internal/notify"
	"catalog-admin/internal/session"
	"catalog-admin/internal/transport"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	APIRoot    string
	PrettyJSON bool
	Format     string
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "catadmin",
		Short:         "Catalog admin console (users, categories, subcategories)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Sign in once; the session is kept until logout or expiry
  catadmin login --email admin@example.com --password '...'

  # Scriptable commands
  catadmin users list --status active --search mona
  catadmin categories add --name Toys --image ./toys.png
  catadmin subcategories toggle 12

  # Direct lookup (shortcut for: catadmin users show 7)
  catadmin users 7

  # Interactive browser
  catadmin browse categories
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIRoot, "api", envOr("CATADMIN_API_ROOT", ""), "Admin API root (default: CATADMIN_API_ROOT or the config file)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CATADMIN_FORMAT", ""), "Output format (json|table)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log requests to stderr at debug level")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newSubcategoriesCmd(app))
	cmd.AddCommand(newBrowseCmd(app))

	return cmd
}

// console is everything one command invocation works with. It is opened per
// command and closed when the command returns.
type console struct {
	cfg     config.Config
	log     *logrus.Logger
	profile *session.Profile
	client  *transport.Client
	deps    collection.Deps
	catalog *collection.Catalog
	forms   *mutate.Controller
	notify  notify.Notifier

	closers []io.Closer
}

func openConsole(cmd *cobra.Command, app *App) (*console, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(app.APIRoot) != "" {
		cfg.APIRoot = strings.TrimRight(strings.TrimSpace(app.APIRoot), "/")
	}
	if app.Format == "" {
		app.Format = cfg.Format
	}

	lg, lc, err := logx.New(cfg, logx.Options{Verbose: app.Verbose, Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}
	c := &console{cfg: cfg, log: lg, closers: []io.Closer{lc}}

	prof, err := session.OpenProfile(cmd.Context(), cfg.ConfigDir)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.profile = prof
	c.closers = append(c.closers, prof)

	c.client = transport.New(transport.Options{
		BaseURL:      cfg.APIRoot,
		TunnelHeader: cfg.TunnelHeader,
		HTTP:         &http.Client{Timeout: cfg.Timeout},
		Logger:       lg,
	}, prof)

	// Notices also land in the log so a session can be reconstructed.
	c.notify = notify.Tee(notify.NewTerminal(cmd.ErrOrStderr()), notify.Log{L: lg})
	stderr := cmd.ErrOrStderr()
	c.deps = collection.Deps{
		Client:  c.client,
		Session: prof,
		Notify:  c.notify,
		Nav: collection.NavigatorFunc(func() {
			fmt.Fprintln(stderr, "Run `catadmin login` to sign in again.")
		}),
		Log: lg,
	}
	c.rebind(c.deps)
	lg.WithFields(logrus.Fields{"api": cfg.APIRoot, "command": cmd.CommandPath()}).Debug("console opened")
	return c, nil
}

// rebind rebuilds the catalog on deps, e.g. to route notifications into the
// browser instead of stderr.
func (c *console) rebind(deps collection.Deps) {
	c.deps = deps
	c.catalog = collection.NewCatalog(deps)
	c.forms = mutate.NewController(c.catalog)
}

func (c *console) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// requireLogin fails fast when no credential is stored, instead of letting the
// first request come back 401.
func (c *console) requireLogin() error {
	if _, ok := c.profile.Credential(); !ok {
		return errNotLoggedIn
	}
	return nil
}

func withConsole(cmd *cobra.Command, app *App, fn func(*console) error) error {
	c, err := openConsole(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}

// withSession is withConsole for commands that talk to authenticated
// endpoints.
func withSession(cmd *cobra.Command, app *App, fn func(*console) error) error {
	return withConsole(cmd, app, func(c *console) error {
		if err := c.requireLogin(); err != nil {
			return writeErr(cmd, err)
		}
		return fn(c)
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reported(err)
}
