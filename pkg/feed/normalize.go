package feed

import (
	"net/url"
	"strings"

	"github.com/tathya/tathya-cli/pkg/api"
)

const anonymous = "Anonymous"

// NormalizeOptions tunes normalization
type NormalizeOptions struct {
	// MediaBaseURL resolves relative attachment paths
	MediaBaseURL string
}

// NormalizeAll normalizes a page of raw posts. The result is never nil.
func NormalizeAll(raws []api.RawPost, viewerID string, opts NormalizeOptions) []Post {
	posts := make([]Post, 0, len(raws))
	for _, raw := range raws {
		posts = append(posts, Normalize(raw, viewerID, opts))
	}
	return posts
}

// Normalize turns a raw store record into a fully populated Post. It never
// modifies raw.
func Normalize(raw api.RawPost, viewerID string, opts NormalizeOptions) Post {
	likedBy := canonicalIDs(raw.LikedBy)
	post := Post{
		ID:               raw.Key(),
		Author:           normalizeAuthor(raw.Author.RawUser),
		CommunityID:      raw.Community.String(),
		Title:            raw.Title,
		Content:          raw.Content,
		Images:           []Media{},
		Videos:           []Media{},
		IsPinned:         raw.IsPinned,
		LikedBy:          likedBy,
		LikeCount:        len(likedBy),
		CurrentUserLiked: contains(likedBy, viewerID),
		Comments:         make([]Comment, 0, len(raw.Comments)),
		CreatedAt:        raw.CreatedAt,
	}

	for _, att := range raw.Attachments {
		m, ok := normalizeMedia(att, opts.MediaBaseURL)
		if !ok {
			continue
		}
		if m.Kind == MediaImage {
			post.Images = append(post.Images, m)
		} else {
			post.Videos = append(post.Videos, m)
		}
	}

	for _, rc := range raw.Comments {
		post.Comments = append(post.Comments, normalizeComment(rc, viewerID))
	}

	return post
}

func normalizeComment(raw api.RawComment, viewerID string) Comment {
	likedBy := canonicalIDs(raw.LikedBy)
	c := Comment{
		ID:               raw.Key(),
		Author:           normalizeAuthor(raw.Author.RawUser),
		Content:          raw.Content,
		LikedBy:          likedBy,
		LikeCount:        len(likedBy),
		CurrentUserLiked: contains(likedBy, viewerID),
		Replies:          make([]Reply, 0, len(raw.Replies)),
		CreatedAt:        raw.CreatedAt,
	}
	for _, rr := range raw.Replies {
		rl := canonicalIDs(rr.LikedBy)
		c.Replies = append(c.Replies, Reply{
			ID:               rr.Key(),
			Author:           normalizeAuthor(rr.Author.RawUser),
			Content:          rr.Content,
			LikedBy:          rl,
			LikeCount:        len(rl),
			CurrentUserLiked: contains(rl, viewerID),
			CreatedAt:        rr.CreatedAt,
		})
	}
	return c
}

// DisplayName walks username, profile name, email and falls back to
// "Anonymous"
func DisplayName(u api.RawUser) string {
	candidates := []string{u.Username}
	if u.Profile != nil {
		candidates = append(candidates, u.Profile.Name)
	}
	candidates = append(candidates, u.Name, u.Email)

	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return anonymous
}

func normalizeAuthor(u api.RawUser) Author {
	name := DisplayName(u)
	a := Author{
		ID:          u.Key(),
		DisplayName: name,
		Role:        u.Role,
	}

	avatar := strings.TrimSpace(u.Avatar)
	if avatar == "" && u.Profile != nil {
		avatar = strings.TrimSpace(u.Profile.Avatar)
	}
	if avatar != "" {
		a.Avatar = avatar
		return a
	}

	placeholder := GenerateAvatar(name)
	a.Placeholder = &placeholder
	a.Avatar = placeholder.DataURI
	return a
}

func normalizeMedia(att api.RawAttachment, base string) (Media, bool) {
	mimeType := strings.ToLower(strings.TrimSpace(att.Mime()))
	var kind MediaKind
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		kind = MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		kind = MediaVideo
	default:
		return Media{}, false
	}
	return Media{
		Kind:     kind,
		MimeType: mimeType,
		URL:      resolveMediaURL(base, att.Location()),
	}, true
}

func resolveMediaURL(base, loc string) string {
	loc = strings.TrimSpace(loc)
	if base == "" || loc == "" {
		return loc
	}
	ref, err := url.Parse(loc)
	if err != nil || ref.IsAbs() || ref.Host != "" {
		return loc
	}
	b, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return loc
	}
	return b.ResolveReference(&url.URL{Path: strings.TrimLeft(ref.Path, "/"), RawQuery: ref.RawQuery}).String()
}

// canonicalIDs drops empty ids and collapses duplicates, keeping first
// occurrence order
func canonicalIDs(ids []api.FlexID) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s := strings.TrimSpace(id.String())
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func contains(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
