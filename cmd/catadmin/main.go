package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"catalog-admin/internal/cli"
)

var kindCommands = map[string]bool{
	"users": true, "user": true,
	"categories": true, "category": true,
	"subcategories": true, "subcategory": true,
}

func isEntityID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// rewriteDirectLookupArgs turns `catadmin <kind> <id>` into
// `catadmin <kind> show <id>`. Cobra would otherwise treat the id as an
// unknown subcommand. Persistent flags may come first, so the scan looks for
// the first two positional tokens.
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 3 {
		return argv
	}

	// Flags we don't recognize are skipped without their value, so an id is
	// never swallowed by mistake.
	valueFlags := map[string]bool{
		"--api":    true,
		"--format": true,
	}

	kindAt := -1
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			continue
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		if kindAt < 0 {
			if !kindCommands[a] {
				return argv
			}
			kindAt = i
			continue
		}
		if !isEntityID(a) {
			return argv
		}
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "show")
		out = append(out, argv[i:]...)
		return out
	}
	return argv
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
