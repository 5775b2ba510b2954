package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/tathya/tathya-cli/pkg/feed"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
	Liked   = color.New(color.FgRed, color.Bold)
)

// FeedHeaders are the columns of PostRows
var FeedHeaders = []string{"#", "ID", "Author", "Title", "Likes", "Comments", "Media"}

// PostRows turns posts into table rows numbered from 1
func PostRows(posts []feed.Post) [][]string {
	rows := make([][]string, 0, len(posts))
	for i, p := range posts {
		likes := strconv.Itoa(p.LikeCount)
		if p.CurrentUserLiked {
			likes += " ♥"
		}
		title := p.Title
		if p.IsPinned {
			title = "📌 " + title
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.ID,
			p.Author.DisplayName,
			Truncate(title, 40),
			likes,
			strconv.Itoa(len(p.Comments)),
			mediaSummary(p),
		})
	}
	return rows
}

func mediaSummary(p feed.Post) string {
	if p.MediaCount() == 0 {
		return "-"
	}
	return fmt.Sprintf("%d img, %d vid", len(p.Images), len(p.Videos))
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n || n < 2 {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// RenderPost writes one post with its comments and carousel position
func RenderPost(w io.Writer, index int, p feed.Post, slide *feed.Slide) {
	heart := "♡"
	if p.CurrentUserLiked {
		heart = Liked.Sprint("♥")
	}

	Bold.Fprintf(w, "[%d] %s", index, p.Title)
	if p.IsPinned {
		Warning.Fprint(w, "  pinned")
	}
	fmt.Fprintln(w)
	Faint.Fprintf(w, "    by %s", p.Author.DisplayName)
	if p.Author.Role != "" && p.Author.Role != "user" {
		Faint.Fprintf(w, " (%s)", p.Author.Role)
	}
	if p.CreatedAt != "" {
		Faint.Fprintf(w, " · %s", p.CreatedAt)
	}
	fmt.Fprintln(w)

	if p.Content != "" {
		for _, line := range strings.Split(p.Content, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}

	if slide != nil {
		Info.Fprintf(w, "    [%s %d/%d] %s\n", slide.Media.Kind, slide.Index+1, slide.Total, slide.Media.URL)
	}

	fmt.Fprintf(w, "    %s %d   💬 %d\n", heart, p.LikeCount, len(p.Comments))

	for ci, c := range p.Comments {
		fmt.Fprintf(w, "      %d. %s: %s %s\n", ci+1, Bold.Sprint(c.Author.DisplayName), c.Content, likeMark(c.CurrentUserLiked, c.LikeCount))
		for ri, r := range c.Replies {
			fmt.Fprintf(w, "         %d.%d %s: %s %s\n", ci+1, ri+1, Bold.Sprint(r.Author.DisplayName), r.Content, likeMark(r.CurrentUserLiked, r.LikeCount))
		}
	}
}

func likeMark(liked bool, n int) string {
	if n == 0 && !liked {
		return ""
	}
	if liked {
		return Liked.Sprintf("♥%d", n)
	}
	return Faint.Sprintf("♡%d", n)
}

// RenderComposer writes the composer prompt line
func RenderComposer(w io.Writer, st feed.ComposerState) {
	switch st.Kind {
	case feed.ComposerComment:
		Info.Fprintf(w, "commenting on %s: %q\n", st.PostID, st.Draft)
	case feed.ComposerReply:
		Info.Fprintf(w, "replying to %s on %s: %q\n", st.ReplyTo, st.PostID, st.Draft)
	}
}
