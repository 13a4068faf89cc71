package rembg

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Stats 一次抠图的统计
type Stats struct {
	Total  int
	Erased int
	Kept   int

	// SourceHadAlpha 输入图片本身已经带透明像素
	SourceHadAlpha bool
	// Bounds 输出中前景（alpha > 0）的包围盒，全部被抠掉时为空
	Bounds image.Rectangle
}

// HeuristicRemBG 基于颜色规则的逐像素抠图
type HeuristicRemBG struct {
	Classifier Classifier
	// Workers 并发处理的行带数量，<= 0 时取 CPU 数
	Workers int
}

func NewHeuristicRemBG(c Classifier) *HeuristicRemBG {
	return &HeuristicRemBG{
		Classifier: c,
		Workers:    runtime.NumCPU(),
	}
}

func (h *HeuristicRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	out, _, err := h.RemoveWithStats(ctx, img)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveWithStats 把输入统一成 NRGBA（没有 alpha 的图补成不透明），
// 对每个像素分类后写入一张同尺寸的新图，原图不会被修改
func (h *HeuristicRemBG) RemoveWithStats(ctx context.Context, img image.Image) (*image.NRGBA, Stats, error) {
	if h.Classifier == nil {
		return nil, Stats{}, errors.New("rembg: nil classifier")
	}

	src := toNRGBA(img)
	b := src.Bounds()
	dst := image.NewNRGBA(b)

	stats := Stats{
		Total:          b.Dx() * b.Dy(),
		SourceHadAlpha: hasUsefulAlpha(src),
	}
	if stats.Total == 0 {
		return dst, stats, nil
	}

	bands := splitRows(b, h.workers())
	erased := make([]int, len(bands))

	g, ctx := errgroup.WithContext(ctx)
	for i, band := range bands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			erased[i] = h.classifyRows(src, dst, band)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	for _, n := range erased {
		stats.Erased += n
	}
	stats.Kept = stats.Total - stats.Erased

	bbox, err := alphaBBox(dst, 0)
	if err == nil {
		stats.Bounds = bbox
	}

	slog.Debug("background removed",
		"width", b.Dx(), "height", b.Dy(),
		"erased", stats.Erased, "kept", stats.Kept,
		"sourceHadAlpha", stats.SourceHadAlpha)

	return dst, stats, nil
}

// classifyRows 处理 [rows.Min.Y, rows.Max.Y) 的所有行，返回被抠掉的像素数
func (h *HeuristicRemBG) classifyRows(src, dst *image.NRGBA, rows image.Rectangle) int {
	w := rows.Dx()
	erased := 0
	for y := rows.Min.Y; y < rows.Max.Y; y++ {
		si := src.PixOffset(rows.Min.X, y)
		di := dst.PixOffset(rows.Min.X, y)
		for x := 0; x < w; x++ {
			s := src.Pix[si : si+4 : si+4]
			p := color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}

			out := p
			if h.Classifier.Classify(p) == Background {
				out = Erased
				erased++
			}

			d := dst.Pix[di : di+4 : di+4]
			d[0], d[1], d[2], d[3] = out.R, out.G, out.B, out.A
			si += 4
			di += 4
		}
	}
	return erased
}

func (h *HeuristicRemBG) workers() int {
	if h.Workers <= 0 {
		return runtime.NumCPU()
	}
	return h.Workers
}

// splitRows 按行把 bounds 切成最多 n 段，每段连续且覆盖完整宽度
func splitRows(b image.Rectangle, n int) []image.Rectangle {
	rows := b.Dy()
	n = max(1, min(n, rows))

	step := (rows + n - 1) / n
	bands := make([]image.Rectangle, 0, n)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		bands = append(bands, image.Rect(b.Min.X, y, b.Max.X, min(y+step, b.Max.Y)))
	}
	return bands
}
