package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/pkg/service"
)

// query is the page that numbered post references resolve against
var query service.FeedQuery

// addQueryFlags binds --page and --community to query
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	cmd.Flags().StringVar(&query.CommunityID, "community", "", "Community id (recent posts when empty)")
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Feed commands",
	Long:  "Read the campus feed",
}

var feedRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewFeedService(app).List(cmd.Context(), service.FeedQuery{Page: query.Page})
	},
}

var feedCommunityCmd = &cobra.Command{
	Use:   "community <community-id>",
	Short: "List posts in a community",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewFeedService(app).List(cmd.Context(), service.FeedQuery{CommunityID: args[0], Page: query.Page})
	},
}

var feedShowCmd = &cobra.Command{
	Use:   "show <post>",
	Short: "Show a post with its comments",
	Long:  "Show a post by list number or id, with comments and replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		fs := service.NewFeedService(app)
		id, err := fs.Find(cmd.Context(), query, args[0])
		if err != nil {
			return err
		}
		return fs.Show(id)
	},
}

var feedBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the feed interactively",
	Long:  "Open an interactive session to like, comment and page through posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewBrowseSession(app).Run(cmd.Context(), query)
	},
}

func init() {
	feedRecentCmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	feedCommunityCmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	addQueryFlags(feedShowCmd)
	addQueryFlags(feedBrowseCmd)

	feedCmd.AddCommand(feedRecentCmd)
	feedCmd.AddCommand(feedCommunityCmd)
	feedCmd.AddCommand(feedShowCmd)
	feedCmd.AddCommand(feedBrowseCmd)
}
