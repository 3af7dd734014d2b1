package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tumblrsearch/internal/config"
)

const envExampleFile = ".env.example"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	RunE:  initAction,
}

func initAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0
	files := []struct {
		name string
		data string
	}{
		{config.DefaultConfigFile, exampleConfig},
		{envExampleFile, exampleEnv},
	}
	for _, f := range files {
		wrote, err := writeIfNotExists(out, filepath.Join(configDir, f.name), []byte(f.data))
		if err != nil {
			return err
		}
		if wrote {
			created++
		}
	}

	if created == 0 {
		fmt.Fprintf(out, "Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Fprintf(out, "Initialized %s with %d files. Copy %s to %s and set %s.\n",
			configDir, created, envExampleFile, config.DefaultEnvFile, config.DefaultAPIKeyEnv)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(out io.Writer, path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# tumblrsearch configuration

tumblr:
  api_key_env: TUMBLR_API_KEY
  base_url: https://api.tumblr.com/v2/blog
  method: posts
  post_type: text
  timeout: 30s

server:
  addr: ":8080"
  public_url: http://localhost:8080
  read_timeout: 10s
  write_timeout: 60s
  shutdown_timeout: 10s

storage:
  path: .tumblrsearch/tumblrsearch.db

query:
  # Send "tag=,a,b" instead of "tag=a,b" upstream.
  keep_leading_comma: false

summarize:
  max_len: 200

privacy:
  redact:
    enabled: false
    patterns: []
    # - "[\\w.+-]+@[\\w-]+\\.[\\w.]+"

logging:
  level: info
  development: false

description:
  short_name: Tumblr Search
  contact: ""
  syndication_right: open
  adult_content: "false"
  language: en-us

feeds:
  - id: staff
    title: Tumblr Staff
    abstract: Announcements from the Tumblr staff blog.
    blog: staff
    tags: []
`

const exampleEnv = `# Tumblr OAuth consumer key, used as api_key on every request.
TUMBLR_API_KEY=
`
