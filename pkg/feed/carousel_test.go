package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaPost(id string, images, videos int) Post {
	p := Post{ID: id}
	for i := 0; i < images; i++ {
		p.Images = append(p.Images, Media{Kind: MediaImage})
	}
	for i := 0; i < videos; i++ {
		p.Videos = append(p.Videos, Media{Kind: MediaVideo})
	}
	return p
}

func TestCarousel_Cyclic(t *testing.T) {
	for n := 1; n <= 5; n++ {
		c := NewCarousel()
		for i := 0; i < n; i++ {
			c.Navigate("p", n, Next)
		}
		assert.Equal(t, 0, c.Index("p"), "n=%d", n)
	}
}

func TestCarousel_PrevWrapsToLast(t *testing.T) {
	c := NewCarousel()
	assert.Equal(t, 3, c.Navigate("p", 4, Prev))
	assert.Equal(t, 2, c.Navigate("p", 4, Prev))
	assert.Equal(t, 3, c.Navigate("p", 4, Next))
	assert.Equal(t, 0, c.Navigate("p", 4, Next))
}

func TestCarousel_EmptyHasNoSlide(t *testing.T) {
	c := NewCarousel()
	assert.Equal(t, 0, c.Navigate("p", 0, Next))

	_, ok := c.Current(mediaPost("p", 0, 0))
	assert.False(t, ok)
}

func TestCarousel_CurrentDerivesKind(t *testing.T) {
	c := NewCarousel()
	p := mediaPost("p", 2, 1)

	s, ok := c.Current(p)
	require.True(t, ok)
	assert.Equal(t, MediaImage, s.Media.Kind)
	assert.Equal(t, 3, s.Total)

	c.Navigate("p", p.MediaCount(), Prev)
	s, _ = c.Current(p)
	assert.Equal(t, 2, s.Index)
	assert.Equal(t, MediaVideo, s.Media.Kind)
}

func TestCarousel_ResetAndStaleIndex(t *testing.T) {
	c := NewCarousel()
	c.Navigate("a", 3, Prev)
	c.Navigate("b", 3, Next)

	c.Reset("a")
	assert.Equal(t, 0, c.Index("a"))
	assert.Equal(t, 1, c.Index("b"))

	// a shorter array than the stored index never goes out of bounds
	s, ok := c.Current(mediaPost("b", 1, 0))
	require.True(t, ok)
	assert.Equal(t, 0, s.Index)

	c.ResetAll()
	assert.Empty(t, c.Snapshot())
}
