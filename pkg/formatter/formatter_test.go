package formatter

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tathya/tathya-cli/pkg/feed"
)

func init() {
	color.NoColor = true
}

func samplePost() feed.Post {
	return feed.Post{
		ID:               "p1",
		Author:           feed.Author{DisplayName: "asha", Role: "moderator"},
		Title:            "Streetlight out near hostel B",
		Content:          "Reported to facilities.\nPlease avoid after 9pm.",
		Images:           []feed.Media{{Kind: feed.MediaImage, URL: "http://h/a.png"}},
		IsPinned:         true,
		LikedBy:          []string{"v1"},
		LikeCount:        1,
		CurrentUserLiked: true,
		Comments: []feed.Comment{{
			ID:      "c1",
			Author:  feed.Author{DisplayName: "ravi"},
			Content: "thanks",
			Replies: []feed.Reply{{ID: "r1", Author: feed.Author{DisplayName: "asha"}, Content: "@ravi np", LikeCount: 2}},
		}},
	}
}

func TestPostRows(t *testing.T) {
	rows := PostRows([]feed.Post{samplePost(), {ID: "p2", Author: feed.Author{DisplayName: "Anonymous"}}})

	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(FeedHeaders))
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "1 ♥", rows[0][4])
	assert.Equal(t, "1 img, 0 vid", rows[0][6])
	assert.Equal(t, "-", rows[1][6])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "a b", Truncate("a \n b", 10))
	assert.Equal(t, "ééé…", Truncate("éééééé", 4))
}

func TestRenderPost(t *testing.T) {
	var buf bytes.Buffer
	post := samplePost()
	slide := &feed.Slide{Index: 0, Total: 1, Media: post.Images[0]}

	RenderPost(&buf, 1, post, slide)

	out := buf.String()
	assert.Contains(t, out, "[1] Streetlight out near hostel B  pinned")
	assert.Contains(t, out, "by asha (moderator)")
	assert.Contains(t, out, "    Please avoid after 9pm.")
	assert.Contains(t, out, "[image 1/1] http://h/a.png")
	assert.Contains(t, out, "♥ 1")
	assert.Contains(t, out, "1. ravi: thanks")
	assert.Contains(t, out, "1.1 asha: @ravi np ♡2")
}

func TestRenderComposer(t *testing.T) {
	var buf bytes.Buffer
	RenderComposer(&buf, feed.ComposerState{})
	assert.Empty(t, buf.String())

	RenderComposer(&buf, feed.ComposerState{Kind: feed.ComposerReply, PostID: "p1", ReplyTo: "asha", Draft: "@asha "})
	assert.Equal(t, "replying to asha on p1: \"@asha \"\n", buf.String())
}
