package feed

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Avatar is a generated placeholder for authors without a picture
type Avatar struct {
	Initials string `json:"initials"`
	Color    string `json:"color"`
	DataURI  string `json:"data_uri"`
}

var avatarPalette = [...]string{
	"#F44336", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5",
	"#2196F3", "#009688", "#4CAF50", "#FF9800", "#795548",
}

// nameHash is the classic 31-multiplier string hash over UTF-16 code
// units, wrapped to 32 bits.
func nameHash(s string) int32 {
	var h int32
	for _, r := range s {
		if r > 0xFFFF {
			r1, r2 := utf16Pair(r)
			h = int32(r1) + (h << 5) - h
			h = int32(r2) + (h << 5) - h
			continue
		}
		h = int32(r) + (h << 5) - h
	}
	return h
}

func utf16Pair(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r>>10)&0x3FF, 0xDC00 + r&0x3FF
}

// Initials returns the upper-cased first letters of the first and last
// words, or "?" for a blank name
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}
	first := firstLetter(words[0])
	if len(words) == 1 {
		return first
	}
	return first + firstLetter(words[len(words)-1])
}

func firstLetter(w string) string {
	r, _ := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r))
}

// GenerateAvatar builds the placeholder for a display name. The output is
// a pure function of name.
func GenerateAvatar(name string) Avatar {
	h := int64(nameHash(name))
	if h < 0 {
		h = -h
	}
	color := avatarPalette[h%int64(len(avatarPalette))]
	initials := Initials(name)

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 64 64">`+
			`<rect width="64" height="64" rx="32" fill="%s"/>`+
			`<text x="50%%" y="50%%" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="26" fill="#FFFFFF">%s</text>`+
			`</svg>`,
		color, xmlEscape(initials))

	return Avatar{
		Initials: initials,
		Color:    color,
		DataURI:  "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
	}
}

var xmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
