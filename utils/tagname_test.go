package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"holiday", "holiday"},
		{"  holiday  ", "holiday"},
		{"summer holiday", "summer_holiday"},
		{"summer \t  holiday", "summer_holiday"},
		{"se@a!", "sea"},
		{"a,b.c", "abc"},
		{"MixedCase", "MixedCase"},
		{"snake_case-kept", "snake_case-kept"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeTagName(tc.in), "input %q", tc.in)
	}
}

func TestMediaTypeForPath(t *testing.T) {
	typ, ok := MediaTypeForPath("/media/photos/beach.JPG")
	assert.True(t, ok)
	assert.Equal(t, MediaTypeImage, typ)

	typ, ok = MediaTypeForPath("clip.mkv")
	assert.True(t, ok)
	assert.Equal(t, MediaTypeVideo, typ)

	_, ok = MediaTypeForPath("notes.txt")
	assert.False(t, ok)

	_, ok = MediaTypeForPath("no_extension")
	assert.False(t, ok)
}

func TestIsRasterImage(t *testing.T) {
	assert.True(t, IsRasterImage("beach.jpg"))
	assert.True(t, IsRasterImage("/media/photos/beach.PNG"))
	assert.False(t, IsRasterImage("clip.mp4"))
	assert.False(t, IsRasterImage("notes.txt"))
}
