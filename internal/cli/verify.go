package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/spf13/cobra"
)

var (
	verifyTimeout time.Duration
	verifyShow    int
)

var verifyCmd = &cobra.Command{
	Use:   "verify <url|file>",
	Short: "Parse a served feed and report what a feed reader would see",
	Long: `Fetches a feed URL (or reads a file, "-" for stdin) and parses it the way a
feed reader would. Fails if the document is not a valid Atom or JSON feed.`,
	Args: cobra.ExactArgs(1),
	RunE: verifyAction,
}

func init() {
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 30*time.Second, "fetch timeout")
	verifyCmd.Flags().IntVar(&verifyShow, "show", 5, "number of items to print")
}

func verifyAction(cmd *cobra.Command, args []string) error {
	feed, err := parseFeed(cmd.Context(), args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s feed %q: %d items\n", feed.FeedType, feed.FeedVersion, feed.Title, len(feed.Items))
	for i, item := range feed.Items {
		if i >= verifyShow {
			fmt.Fprintf(out, "  ... %d more\n", len(feed.Items)-verifyShow)
			break
		}
		fmt.Fprintf(out, "  - %s\n", item.Title)
		if item.Link != "" {
			fmt.Fprintf(out, "    %s\n", item.Link)
		}
		if len(item.Categories) > 0 {
			fmt.Fprintf(out, "    tags: %s\n", strings.Join(item.Categories, ", "))
		}
	}
	return nil
}

func parseFeed(ctx context.Context, src string, stdin io.Reader) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: verifyTimeout}

	switch {
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		feed, err := fp.ParseURLWithContext(src, ctx)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src, err)
		}
		return feed, nil
	case src == "-":
		feed, err := fp.Parse(stdin)
		if err != nil {
			return nil, fmt.Errorf("parse stdin: %w", err)
		}
		return feed, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = f.Close() }()
	feed, err := fp.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}
	return feed, nil
}
