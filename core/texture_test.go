package core

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAndPoll(t *testing.T, l *TextureLoader) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))
	return l.Poll()
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 256, 1024} {
		assert.True(t, IsPowerOfTwo(n), n)
	}
	for _, n := range []int{0, -4, 3, 200, 300, 1023} {
		assert.False(t, IsPowerOfTwo(n), n)
	}
}

func TestFilterModeFor(t *testing.T) {
	assert.Equal(t, FilterMipmap, FilterModeFor(256, 256))
	assert.Equal(t, FilterClampLinear, FilterModeFor(300, 200))
	assert.Equal(t, FilterClampLinear, FilterModeFor(256, 200))
	assert.Equal(t, FilterMipmap, FilterModeFor(512, 64))
}

func TestTexturePlaceholderBeforeDecode(t *testing.T) {
	ctx := newFakeContext()
	images := newFakeImages()
	images.add("a.png", 256, 256)
	images.gate = make(chan struct{})
	l := NewTextureLoader(ctx, images)
	defer l.Close()

	a, err := l.Load("a.png")
	require.NoError(t, err)
	b, err := l.Load("a.png")
	require.NoError(t, err)

	blue := PlaceholderPixel()
	assert.Equal(t, [4]byte{0, 0, 255, 255}, blue)
	assert.Equal(t, blue, PlaceholderPixel())
	for _, tex := range []*Texture{a, b} {
		ft := ctx.textures[tex.ID]
		assert.Equal(t, blue[:], ft.pix)
		assert.Equal(t, 1, ft.width)
		assert.Equal(t, 1, ft.height)
		assert.False(t, tex.Ready())
		assert.Equal(t, FilterPlaceholder, tex.Filter())
	}

	assert.Equal(t, 0, l.Poll())
	assert.Equal(t, 2, l.Pending())

	close(images.gate)
	assert.Equal(t, 2, waitAndPoll(t, l))
	assert.Equal(t, 0, l.Pending())
	assert.True(t, a.Ready())
}

func TestTextureMipmapPath(t *testing.T) {
	ctx := newFakeContext()
	images := newFakeImages()
	images.add("pow2.png", 256, 256)
	l := NewTextureLoader(ctx, images)
	defer l.Close()

	tex, err := l.Load("pow2.png")
	require.NoError(t, err)
	assert.Equal(t, 1, waitAndPoll(t, l))

	ft := ctx.textures[tex.ID]
	assert.True(t, ft.mipmapped)
	assert.Empty(t, ft.params)
	assert.Equal(t, 2, ft.uploads)
	assert.Len(t, ft.pix, 256*256*4)
	assert.Equal(t, FilterMipmap, tex.Filter())
	w, h := tex.Size()
	assert.Equal(t, [2]int{256, 256}, [2]int{w, h})
}

func TestTextureClampLinearPath(t *testing.T) {
	ctx := newFakeContext()
	images := newFakeImages()
	images.add("npot.png", 300, 200)
	l := NewTextureLoader(ctx, images)
	defer l.Close()

	tex, err := l.Load("npot.png")
	require.NoError(t, err)
	waitAndPoll(t, l)

	ft := ctx.textures[tex.ID]
	assert.False(t, ft.mipmapped)
	assert.Equal(t, ClampToEdge, ft.params[TextureWrapS])
	assert.Equal(t, ClampToEdge, ft.params[TextureWrapT])
	assert.Equal(t, Linear, ft.params[TextureMinFilter])
	assert.Equal(t, FilterClampLinear, tex.Filter())
	assert.True(t, tex.Ready())
}

func TestTextureDecodeFailureKeepsPlaceholder(t *testing.T) {
	ctx := newFakeContext()
	l := NewTextureLoader(ctx, newFakeImages())
	defer l.Close()

	tex, err := l.Load("missing.png")
	require.NoError(t, err)
	waitAndPoll(t, l)

	blue := PlaceholderPixel()
	assert.Equal(t, blue[:], ctx.textures[tex.ID].pix)
	assert.False(t, tex.Ready())
	var ae *AssetError
	require.True(t, errors.As(tex.Err(), &ae))
	assert.Equal(t, "missing.png", ae.Source)
}

func TestTextureWaitThenPollManySources(t *testing.T) {
	ctx := newFakeContext()
	images := newFakeImages()
	const n = 20
	for i := 0; i < n; i++ {
		images.add(fmt.Sprintf("tex%02d.png", i), 16, 16)
	}
	l := NewTextureLoader(ctx, images)
	defer l.Close()

	textures := make([]*Texture, 0, n)
	for i := 0; i < n; i++ {
		tex, err := l.Load(fmt.Sprintf("tex%02d.png", i))
		require.NoError(t, err)
		textures = append(textures, tex)
	}

	assert.Equal(t, n, waitAndPoll(t, l))
	assert.Equal(t, 0, l.Pending())
	for _, tex := range textures {
		assert.True(t, tex.Ready(), tex.Source)
	}
}

func TestTextureWaitWithoutDecodes(t *testing.T) {
	l := NewTextureLoader(newFakeContext(), newFakeImages())
	defer l.Close()
	assert.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, 0, l.Poll())
}

func TestTextureNilImageKeepsPlaceholder(t *testing.T) {
	ctx := newFakeContext()
	images := newFakeImages()
	images.images["nil.png"] = nil
	images.images["empty.png"] = image.NewRGBA(image.Rectangle{})
	l := NewTextureLoader(ctx, images)
	defer l.Close()

	for _, src := range []string{"nil.png", "empty.png"} {
		tex, err := l.Load(src)
		require.NoError(t, err)
		waitAndPoll(t, l)

		blue := PlaceholderPixel()
		assert.Equal(t, blue[:], ctx.textures[tex.ID].pix, src)
		assert.False(t, tex.Ready(), src)
		var ae *AssetError
		assert.True(t, errors.As(tex.Err(), &ae), src)
	}
}

func TestTextureLoaderClose(t *testing.T) {
	images := newFakeImages()
	images.add("slow.png", 4, 4)
	images.gate = make(chan struct{})
	l := NewTextureLoader(newFakeContext(), images)

	tex, err := l.Load("slow.png")
	require.NoError(t, err)
	l.Close()

	assert.Equal(t, 0, waitAndPoll(t, l))
	assert.Equal(t, 0, l.Pending())
	assert.False(t, tex.Ready())
}

func TestTextureCreateFails(t *testing.T) {
	ctx := newFakeContext()
	ctx.failTextures = true
	_, err := NewTextureLoader(ctx, nil).Load("a.png")
	assert.Error(t, err)
}

func TestToRGBAConvertsAndRebases(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.Set(10, 10, color.NRGBA{R: 255, A: 255})
	src.Set(11, 10, color.NRGBA{G: 255, A: 255})

	rgba := toRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 1), rgba.Rect)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, rgba.Pix)

	same := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, same, toRGBA(same))
}
