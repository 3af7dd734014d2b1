package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tumblrsearch/internal/catalog"
	"github.com/ppiankov/tumblrsearch/internal/config"
	"github.com/ppiankov/tumblrsearch/internal/privacy"
	"github.com/ppiankov/tumblrsearch/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials and the feed registry",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(out, false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(out, true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(out, false, "config.yaml: %v", err)
		ok = false
	} else {
		printCheck(out, true, "config.yaml (%d declared feeds, public url %s)", len(cfg.Feeds), cfg.Server.PublicURL)
	}
	if cfg == nil {
		return errors.New("some checks failed")
	}

	// API key
	if cfg.Tumblr.APIKey == "" {
		printCheck(out, false, "%s is not set (config.yaml tumblr.api_key_env or %s)", cfg.Tumblr.APIKeyEnv, config.DefaultEnvFile)
		ok = false
	} else {
		printCheck(out, true, "API key from %s", cfg.Tumblr.APIKeyEnv)
	}

	// Redaction patterns
	if cfg.Privacy.Redact.Enabled {
		if _, err := privacy.Compile(cfg.Privacy.Redact.Patterns); err != nil {
			printCheck(out, false, "redaction patterns: %v", err)
			ok = false
		} else {
			printCheck(out, true, "%d redaction patterns", len(cfg.Privacy.Redact.Patterns))
		}
	}

	// Database
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		printCheck(out, false, "database: %v", err)
		ok = false
	} else {
		defer func() { _ = db.Close() }()
		printCheck(out, true, "database %s", cfg.Storage.Path)
		checkRegistry(cmd, out, db, cfg)
	}

	if !ok {
		return errors.New("some checks failed")
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}

// checkRegistry reports registered feeds and any that would not build.
func checkRegistry(cmd *cobra.Command, out io.Writer, db *store.Store, cfg *config.Config) {
	feeds, err := db.ListFeeds(cmd.Context())
	if err != nil {
		printInfo(out, "list feeds: %v", err)
		return
	}
	if len(feeds) == 0 && len(cfg.Feeds) == 0 {
		printInfo(out, "no feeds registered (add one with: tumblrsearch feeds add <id> --blog <name>)")
		return
	}

	base := catalog.BaseURL(cfg)
	for _, f := range feeds {
		if err := catalog.FeedConfig(f, cfg.Application(f.PostType)).Validate(); err != nil {
			printInfo(out, "feed %s: %v", f.Identifier, err)
			continue
		}
		printInfo(out, "feed %s -> %s/%s/description", f.Identifier, base, f.Identifier)
	}
}

func printCheck(out io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(out, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "[INFO] %s\n", fmt.Sprintf(format, args...))
}
