package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tumblrsearch/internal/catalog"
	"github.com/ppiankov/tumblrsearch/internal/search"
	"github.com/ppiankov/tumblrsearch/internal/store"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

var (
	feedTitle    string
	feedAbstract string
	feedBlog     string
	feedTags     []string
	feedPostType string
)

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Manage the feed registry",
}

var feedsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered feeds",
	Args:  cobra.NoArgs,
	RunE:  feedsListAction,
}

var feedsAddCmd = &cobra.Command{
	Use:   "add <feed-id>",
	Short: "Register or update a feed",
	Args:  cobra.ExactArgs(1),
	RunE:  feedsAddAction,
}

var feedsRemoveCmd = &cobra.Command{
	Use:   "remove <feed-id>",
	Short: "Remove a feed from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  feedsRemoveAction,
}

func init() {
	feedsAddCmd.Flags().StringVar(&feedBlog, "blog", "", "blog name or host, e.g. staff or staff.tumblr.com")
	feedsAddCmd.Flags().StringVar(&feedTitle, "title", "", "feed title")
	feedsAddCmd.Flags().StringVar(&feedAbstract, "abstract", "", "feed description")
	feedsAddCmd.Flags().StringSliceVar(&feedTags, "tags", nil, "tags to filter by (comma-separated)")
	feedsAddCmd.Flags().StringVar(&feedPostType, "post-type", "", "post type (default: tumblr.post_type)")
	_ = feedsAddCmd.MarkFlagRequired("blog")

	feedsCmd.AddCommand(feedsListCmd, feedsAddCmd, feedsRemoveCmd)
}

func feedsListAction(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	feeds, err := db.ListFeeds(cmd.Context())
	if err != nil {
		return err
	}
	if len(feeds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No feeds registered.")
		return nil
	}

	base := catalog.BaseURL(cfg)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBLOG\tTAGS\tTYPE\tDESCRIPTION")
	for _, f := range feeds {
		postType := f.PostType
		if postType == "" {
			postType = cfg.Tumblr.PostType
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s/%s/description\n",
			f.Identifier, f.Blog, strings.Join(f.Tags, ","), postType, base, f.Identifier)
	}
	return tw.Flush()
}

func feedsAddAction(cmd *cobra.Command, args []string) error {
	def := search.FeedConfig{Identifier: args[0], Blog: feedBlog, Tags: feedTags}
	if err := def.Validate(); err != nil {
		return err
	}
	if feedPostType != "" && !tumblr.ValidPostType(feedPostType) {
		return fmt.Errorf("unknown post type %q (want one of %s)", feedPostType, strings.Join(tumblr.PostTypes, ", "))
	}

	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	f, err := db.UpsertFeed(cmd.Context(), store.Feed{
		Identifier: args[0],
		Title:      feedTitle,
		Abstract:   feedAbstract,
		Blog:       feedBlog,
		Tags:       feedTags,
		PostType:   feedPostType,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved feed %s (blog %s, %d tags).\n", f.Identifier, f.Blog, len(f.Tags))
	return nil
}

func feedsRemoveAction(cmd *cobra.Command, args []string) error {
	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.DeleteFeed(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed feed %s.\n", args[0])
	return nil
}
