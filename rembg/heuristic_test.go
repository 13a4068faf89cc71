package rembg

import (
	"context"
	"image"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checker 生成一张灰色棋盘格背景 + 中间一块金色主体的图
func checker(b image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := px(40, 40, 40, 255)
			if (x/4+y/4)%2 == 0 {
				c = px(200, 200, 200, 255)
			}
			img.SetNRGBA(x, y, c)
		}
	}
	cx, cy := b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2
	for y := cy - 3; y < cy+3; y++ {
		for x := cx - 3; x < cx+3; x++ {
			img.SetNRGBA(x, y, px(200, 160, 50, 255))
		}
	}
	return img
}

func randomImage(b image.Rectangle, seed uint64) *image.NRGBA {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewNRGBA(b)
	for i := range img.Pix {
		img.Pix[i] = uint8(r.IntN(256))
	}
	return img
}

func TestHeuristicRemBG_Remove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		classifier Classifier
		bounds     image.Rectangle
	}{
		{"chroma 棋盘格", NewChromaHeuristicClassifier(), image.Rect(0, 0, 32, 24)},
		{"dark 棋盘格", NewDarkThresholdClassifier(), image.Rect(0, 0, 32, 24)},
		{"非零起点", NewChromaHeuristicClassifier(), image.Rect(-7, 5, 25, 40)},
		{"单行", NewChromaHeuristicClassifier(), image.Rect(0, 0, 64, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := checker(tt.bounds)
			orig := append([]uint8(nil), src.Pix...)

			h := NewHeuristicRemBG(tt.classifier)
			out, stats, err := h.RemoveWithStats(context.Background(), src)
			require.NoError(t, err)

			assert.Equal(t, src.Bounds(), out.Bounds())
			assert.Equal(t, orig, src.Pix, "input must not be modified")
			assert.Equal(t, tt.bounds.Dx()*tt.bounds.Dy(), stats.Total)
			assert.Equal(t, stats.Total, stats.Erased+stats.Kept)

			erased := 0
			for y := tt.bounds.Min.Y; y < tt.bounds.Max.Y; y++ {
				for x := tt.bounds.Min.X; x < tt.bounds.Max.X; x++ {
					in := src.NRGBAAt(x, y)
					got := out.NRGBAAt(x, y)
					if tt.classifier.Classify(in) == Background {
						erased++
						assert.Equal(t, Erased, got, "(%d,%d)", x, y)
					} else {
						assert.Equal(t, in, got, "(%d,%d)", x, y)
					}
				}
			}
			assert.Equal(t, erased, stats.Erased)
		})
	}
}

func TestHeuristicRemBG_ChromaKeepsOnlyGold(t *testing.T) {
	t.Parallel()

	b := image.Rect(0, 0, 20, 20)
	out, stats, err := NewHeuristicRemBG(NewChromaHeuristicClassifier()).
		RemoveWithStats(context.Background(), checker(b))
	require.NoError(t, err)

	assert.Equal(t, 36, stats.Kept)
	assert.Equal(t, image.Rect(7, 7, 13, 13), stats.Bounds)
	assert.False(t, stats.SourceHadAlpha)
	assert.Equal(t, px(200, 160, 50, 255), out.NRGBAAt(10, 10))
	assert.Equal(t, Erased, out.NRGBAAt(0, 0))
}

func TestHeuristicRemBG_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	src := randomImage(image.Rect(3, -2, 131, 97), 42)

	for _, c := range []Classifier{NewDarkThresholdClassifier(), NewChromaHeuristicClassifier()} {
		seq := &HeuristicRemBG{Classifier: c, Workers: 1}
		par := &HeuristicRemBG{Classifier: c, Workers: 16}

		a, sa, err := seq.RemoveWithStats(context.Background(), src)
		require.NoError(t, err)
		b, sb, err := par.RemoveWithStats(context.Background(), src)
		require.NoError(t, err)

		assert.Equal(t, a.Pix, b.Pix)
		assert.Equal(t, sa, sb)
	}
}

func TestHeuristicRemBG_Idempotent(t *testing.T) {
	t.Parallel()

	src := randomImage(image.Rect(0, 0, 40, 30), 7)

	for _, c := range []Classifier{NewDarkThresholdClassifier(), NewChromaHeuristicClassifier()} {
		h := NewHeuristicRemBG(c)
		once, _, err := h.RemoveWithStats(context.Background(), src)
		require.NoError(t, err)
		twice, _, err := h.RemoveWithStats(context.Background(), once)
		require.NoError(t, err)

		assert.Equal(t, once.Pix, twice.Pix)
	}
}

func TestHeuristicRemBG_NonNRGBAInput(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 16)
	}

	out, stats, err := NewHeuristicRemBG(NewDarkThresholdClassifier()).
		RemoveWithStats(context.Background(), gray)
	require.NoError(t, err)
	assert.False(t, stats.SourceHadAlpha)

	for i := range gray.Pix {
		x, y := i%4, i/4
		v := gray.Pix[i]
		if v < DefaultDarkThreshold {
			assert.Equal(t, Erased, out.NRGBAAt(x, y))
		} else {
			assert.Equal(t, px(v, v, v, 255), out.NRGBAAt(x, y))
		}
	}
}

func TestHeuristicRemBG_KeepsSourceAlpha(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, px(200, 160, 50, 77))
	src.SetNRGBA(1, 0, px(10, 10, 10, 0))

	out, stats, err := NewHeuristicRemBG(NewChromaHeuristicClassifier()).
		RemoveWithStats(context.Background(), src)
	require.NoError(t, err)

	assert.True(t, stats.SourceHadAlpha)
	assert.Equal(t, px(200, 160, 50, 77), out.NRGBAAt(0, 0))
	assert.Equal(t, Erased, out.NRGBAAt(1, 0))
}

func TestHeuristicRemBG_AllErased(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	out, stats, err := NewHeuristicRemBG(NewDarkThresholdClassifier()).
		RemoveWithStats(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, 25, stats.Erased)
	assert.True(t, stats.Bounds.Empty())
	assert.Equal(t, Erased, out.NRGBAAt(4, 4))
}

func TestHeuristicRemBG_Empty(t *testing.T) {
	t.Parallel()

	out, stats, err := NewHeuristicRemBG(NewDarkThresholdClassifier()).
		RemoveWithStats(context.Background(), image.NewNRGBA(image.Rectangle{}))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.True(t, out.Bounds().Empty())
}

func TestHeuristicRemBG_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHeuristicRemBG(NewChromaHeuristicClassifier()).Remove(ctx, checker(image.Rect(0, 0, 8, 8)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristicRemBG_NilClassifier(t *testing.T) {
	t.Parallel()

	_, err := (&HeuristicRemBG{}).Remove(context.Background(), checker(image.Rect(0, 0, 8, 8)))
	assert.Error(t, err)
}

func TestSplitRows(t *testing.T) {
	t.Parallel()

	b := image.Rect(2, 3, 10, 13)
	for _, n := range []int{1, 3, 4, 10, 64} {
		bands := splitRows(b, n)
		assert.LessOrEqual(t, len(bands), n)

		y := b.Min.Y
		for _, band := range bands {
			assert.Equal(t, y, band.Min.Y)
			assert.Equal(t, b.Min.X, band.Min.X)
			assert.Equal(t, b.Max.X, band.Max.X)
			y = band.Max.Y
		}
		assert.Equal(t, b.Max.Y, y)
	}
}
