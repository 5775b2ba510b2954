package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/pkg/service"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment on posts",
	Long:  "Add comments and replies, and like them",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post> <text...>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewCommentService(app).Add(cmd.Context(), query, args[0], strings.Join(args[1:], " "))
	},
}

var commentReplyCmd = &cobra.Command{
	Use:   "reply <post> <comment> <text...>",
	Short: "Reply to a comment",
	Long:  "Reply to a comment. The reply mentions the comment author.",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		return service.NewCommentService(app).Reply(cmd.Context(), query, args[0], args[1], strings.Join(args[2:], " "))
	},
}

var commentLikeCmd = &cobra.Command{
	Use:   "like <post> <comment> [reply]",
	Short: "Like or unlike a comment or reply",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		reply := ""
		if len(args) == 3 {
			reply = args[2]
		}
		return service.NewCommentService(app).Like(cmd.Context(), query, args[0], args[1], reply)
	},
}

func init() {
	addQueryFlags(commentAddCmd)
	addQueryFlags(commentReplyCmd)
	addQueryFlags(commentLikeCmd)

	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentLikeCmd)
}
