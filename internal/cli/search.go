package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tumblrsearch/internal/search"
	"github.com/ppiankov/tumblrsearch/internal/syndication"
)

var (
	searchFormat string
	searchCount  int
	searchStart  int
	searchTerms  string
)

var searchCmd = &cobra.Command{
	Use:   "search <feed-id>",
	Short: "Run one search against a feed and print the document",
	Args:  cobra.ExactArgs(1),
	RunE:  searchAction,
}

var describeCmd = &cobra.Command{
	Use:   "describe <feed-id>",
	Short: "Print the OpenSearch description of a feed",
	Args:  cobra.ExactArgs(1),
	RunE:  describeAction,
}

var latestCmd = &cobra.Command{
	Use:   "latest <feed-id>",
	Short: "List the blog's most recent posts of any type, ignoring tags",
	Args:  cobra.ExactArgs(1),
	RunE:  latestAction,
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", syndication.FormatAtom, "output format (atom, json, html)")
	searchCmd.Flags().IntVar(&searchCount, "count", search.DefaultCount, "number of posts")
	searchCmd.Flags().IntVar(&searchStart, "start", 0, "offset of the first post")
	searchCmd.Flags().StringVar(&searchTerms, "q", "", "search terms, sent upstream ahead of the feed's tags in the tag filter and echoed in the feed metadata")
}

func searchAction(cmd *cobra.Command, args []string) error {
	mimeType, ok := syndication.MIMEFor(searchFormat)
	if !ok {
		return fmt.Errorf("unknown format %q (want one of atom, json, html)", searchFormat)
	}

	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	feed, err := a.catalog.Feed(ctx, args[0])
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set(search.ParamCount, strconv.Itoa(searchCount))
	params.Set(search.ParamStartIndex, strconv.Itoa(searchStart))
	if searchTerms != "" {
		params.Set(search.ParamTerms, searchTerms)
	}

	res, err := feed.Search(ctx, mimeType, params)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(res.Body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d total results, %s\n", res.TotalResults, res.URL)
	return nil
}

func describeAction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	feed, err := a.catalog.Feed(ctx, args[0])
	if err != nil {
		return err
	}
	d, err := feed.Description()
	if err != nil {
		return err
	}
	_, err = d.WriteTo(cmd.OutOrStdout())
	return err
}

func latestAction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	feed, err := a.catalog.Feed(ctx, args[0])
	if err != nil {
		return err
	}
	items, err := feed.Latest(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, it := range items {
		fmt.Fprintf(out, "%s  %s\n", it.Published.Format("2006-01-02"), it.DisplayTitle())
		if it.URL != "" {
			fmt.Fprintf(out, "    %s\n", it.URL)
		}
		if tags := it.TagList(); len(tags) > 0 {
			fmt.Fprintf(out, "    tags: %s\n", strings.Join(tags, ", "))
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d posts\n", len(items))
	return nil
}
