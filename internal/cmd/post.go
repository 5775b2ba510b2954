package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/service"
)

var (
	postTitle     string
	postContent   string
	postCommunity string
	postFiles     []string
	postYes       bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post management commands",
	Long:  "Create, like and delete posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long:  "Create a post. Files are uploaded in the order given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewPostService(app).Create(cmd.Context(), feed.CreatePostInput{
			Title:       postTitle,
			Content:     postContent,
			CommunityID: postCommunity,
			Files:       postFiles,
		})
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <post>",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewPostService(app).Like(cmd.Context(), query, args[0])
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post>",
	Short: "Delete a post (moderators only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewPostService(app).Delete(cmd.Context(), query, args[0], !postYes)
	},
}

func init() {
	postCreateCmd.Flags().StringVar(&postTitle, "title", "", "Post title")
	postCreateCmd.Flags().StringVarP(&postContent, "content", "c", "", "Post text")
	postCreateCmd.Flags().StringVar(&postCommunity, "community", "", "Community id")
	postCreateCmd.Flags().StringArrayVarP(&postFiles, "file", "f", nil, "Image or video to attach (repeatable)")
	_ = postCreateCmd.MarkFlagRequired("content")

	addQueryFlags(postLikeCmd)
	addQueryFlags(postDeleteCmd)
	postDeleteCmd.Flags().BoolVarP(&postYes, "yes", "y", false, "Skip confirmation")

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postLikeCmd)
	postCmd.AddCommand(postDeleteCmd)
}
