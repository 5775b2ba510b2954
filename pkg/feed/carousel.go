package feed

// Direction moves through a carousel
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Slide is the media item at a carousel position
type Slide struct {
	Index int   `json:"index"`
	Total int   `json:"total"`
	Media Media `json:"media"`
}

// Carousel tracks a zero-based media index per post. Positions are only
// meaningful against the media arrays they were computed for, so loads
// reset them.
type Carousel struct {
	index map[string]int
}

// NewCarousel creates an empty carousel state
func NewCarousel() *Carousel {
	return &Carousel{index: make(map[string]int)}
}

// Index returns the stored index for a post, 0 by default
func (c *Carousel) Index(postID string) int {
	return c.index[postID]
}

// Navigate moves by dir with true modulo over n items and returns the new
// index. With n == 0 there is no carousel and the index stays 0.
func (c *Carousel) Navigate(postID string, n int, dir Direction) int {
	if n <= 0 {
		delete(c.index, postID)
		return 0
	}
	i := mod(c.index[postID]+int(dir), n)
	c.index[postID] = i
	return i
}

// Current resolves the post's slide. The bool is false when the post has
// no media.
func (c *Carousel) Current(p Post) (Slide, bool) {
	n := p.MediaCount()
	if n == 0 {
		return Slide{}, false
	}
	i := mod(c.index[p.ID], n)
	s := Slide{Index: i, Total: n}
	if i < len(p.Images) {
		s.Media = p.Images[i]
	} else {
		s.Media = p.Videos[i-len(p.Images)]
	}
	return s, true
}

// Reset returns one post to its first item
func (c *Carousel) Reset(postID string) {
	delete(c.index, postID)
}

// ResetAll forgets every position
func (c *Carousel) ResetAll() {
	c.index = make(map[string]int)
}

// Snapshot copies the current positions
func (c *Carousel) Snapshot() map[string]int {
	out := make(map[string]int, len(c.index))
	for k, v := range c.index {
		out[k] = v
	}
	return out
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
