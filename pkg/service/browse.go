package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/formatter"
	"github.com/tathya/tathya-cli/pkg/logger"
	"github.com/tathya/tathya-cli/pkg/websocket"
)

const browseHelp = `Commands:
  list                 show the loaded page
  show N               show post N with comments
  like N               like or unlike post N
  clike N C [R]        like or unlike comment C (or its reply R) on post N
  comment N            start a comment on post N
  reply N C [R]        start a reply to comment C (or its reply R) on post N
  draft TEXT           set the composer text
  send                 submit the composer
  cancel               close the composer
  next N | prev N      move the media carousel of post N
  page P               load page P
  reload               fetch the current page again
  delete N             delete post N (moderators)
  help                 show this help
  quit                 leave`

// BrowseSession is an interactive loop over one feed
type BrowseSession struct {
	app      *App
	feed     *FeedService
	realtime *websocket.Client
	unbind   func()
}

// NewBrowseSession creates an interactive session
func NewBrowseSession(app *App) *BrowseSession {
	return &BrowseSession{app: app, feed: NewFeedService(app)}
}

// Run loads q and reads commands until quit or end of input
func (b *BrowseSession) Run(ctx context.Context, q FeedQuery) error {
	if err := b.feed.List(ctx, q); err != nil {
		return err
	}
	b.startRealtime()
	defer b.stopRealtime()

	out := b.app.Out
	out.Info("Type 'help' for commands.")
	for {
		if st := b.app.Feed.Composer(); st.IsOpen() {
			formatter.RenderComposer(out.W, st)
		}
		line, err := b.app.In.ReadLine("tathya> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := b.Exec(ctx, line)
		if err != nil {
			fmt.Fprint(out.W, cliErrors.FormatError(err))
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one command line. quit is true when the session should end.
func (b *BrowseSession) Exec(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	ctrl := b.app.Feed

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		fmt.Fprintln(b.app.Out.W, browseHelp)

	case "list", "ls":
		b.feed.PrintList()

	case "show":
		id, err := b.postArg(args)
		if err != nil {
			return false, err
		}
		return false, b.feed.Show(id)

	case "like":
		id, err := b.postArg(args)
		if err != nil {
			return false, err
		}
		if err := ctrl.ToggleLike(ctx, id); err != nil {
			return false, err
		}
		b.feed.likeSummary(id)

	case "clike":
		postID, commentID, replyID, err := b.commentArgs(args)
		if err != nil {
			return false, err
		}
		return false, ctrl.ToggleCommentLike(ctx, postID, commentID, replyID)

	case "comment":
		id, err := b.postArg(args)
		if err != nil {
			return false, err
		}
		ctrl.OpenComment(id)

	case "reply":
		postID, commentID, replyID, err := b.commentArgs(args)
		if err != nil {
			return false, err
		}
		ctrl.OpenReply(postID, commentID, replyID)

	case "draft":
		if !ctrl.Composer().IsOpen() {
			return false, cliErrors.ValidationError("draft", "open a comment or reply first")
		}
		st := ctrl.Composer()
		if st.Kind == feed.ComposerReply && st.ReplyTo != "" && !strings.HasPrefix(rest, "@") {
			rest = "@" + st.ReplyTo + " " + rest
		}
		ctrl.SetDraft(rest)

	case "send":
		st := ctrl.Composer()
		if !st.IsOpen() {
			return false, cliErrors.ValidationError("send", "nothing to send")
		}
		if !st.Submittable() {
			return false, cliErrors.ValidationError("draft", "cannot be empty")
		}
		if err := ctrl.SubmitComposer(ctx); err != nil {
			return false, err
		}
		b.app.Out.Success("✓ Sent")

	case "cancel":
		ctrl.CloseComposer()

	case "next", "prev":
		id, err := b.postArg(args)
		if err != nil {
			return false, err
		}
		dir := feed.Next
		if cmd == "prev" {
			dir = feed.Prev
		}
		slide, ok := ctrl.Navigate(id, dir)
		if !ok {
			b.app.Out.Info("Post has no media.")
			return false, nil
		}
		b.app.Out.Info("%d/%d %s %s", slide.Index+1, slide.Total, slide.Media.Kind, slide.Media.URL)

	case "page":
		if len(args) != 1 {
			return false, cliErrors.ValidationError("page", "usage: page P")
		}
		var page int
		if _, err := fmt.Sscanf(args[0], "%d", &page); err != nil || page < 1 {
			return false, cliErrors.ValidationError("page", "must be a positive number")
		}
		src := ctrl.Source()
		if err := b.feed.List(ctx, FeedQuery{CommunityID: src.CommunityID, Page: page}); err != nil {
			return false, err
		}

	case "reload", "r":
		if err := ctrl.Reload(ctx); err != nil {
			return false, err
		}
		b.feed.PrintList()

	case "delete":
		id, err := b.postArg(args)
		if err != nil {
			return false, err
		}
		if err := ctrl.DeletePost(ctx, id); err != nil {
			return false, err
		}
		b.app.Out.Success("✓ Post deleted")

	default:
		return false, cliErrors.ValidationError("command", fmt.Sprintf("unknown command %q, try 'help'", cmd))
	}
	return false, nil
}

func (b *BrowseSession) postArg(args []string) (string, error) {
	if len(args) < 1 {
		return "", cliErrors.ValidationError("post", "missing post number")
	}
	return b.feed.resolve(args[0])
}

func (b *BrowseSession) commentArgs(args []string) (postID, commentID, replyID string, err error) {
	if len(args) < 2 {
		return "", "", "", cliErrors.ValidationError("comment", "usage: N C [R]")
	}
	if postID, err = b.feed.resolve(args[0]); err != nil {
		return
	}
	if commentID, err = b.feed.resolveComment(postID, args[1]); err != nil {
		return
	}
	if len(args) > 2 {
		replyID, err = b.feed.resolveReply(postID, commentID, args[2])
	}
	return
}

func (b *BrowseSession) startRealtime() {
	if !b.app.opts.RealtimeEnabled {
		return
	}
	session := b.app.Session()
	if session == nil {
		logger.Debug("Skipping realtime updates without a session")
		return
	}

	wsClient := websocket.NewClient(websocket.ConfigFromURL(b.app.opts.RealtimeURL))
	if err := wsClient.Connect(session.AccessToken); err != nil {
		b.app.Out.Warning("Live updates unavailable: %v", err)
		return
	}
	b.realtime = wsClient
	b.unbind = feed.BindRealtime(b.app.Feed, wsClient)
	logger.Debug("Realtime updates enabled", "url", b.app.opts.RealtimeURL)
}

func (b *BrowseSession) stopRealtime() {
	if b.unbind != nil {
		b.unbind()
		b.unbind = nil
	}
	if b.realtime != nil {
		_ = b.realtime.Disconnect()
		b.realtime = nil
	}
}
