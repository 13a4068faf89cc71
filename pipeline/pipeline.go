package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chaos-io/chromakey/rembg"
	"github.com/chaos-io/chromakey/util"
)

// Options 流水线的可选项
type Options struct {
	// PreviewPath 非空时额外写一张缩略图，主输出永远保持原尺寸
	PreviewPath string
	// PreviewSize 缩略图最长边
	PreviewSize uint
}

// Result 一次运行的结果
type Result struct {
	OutputPath  string
	PreviewPath string
	Format      string
	Width       int
	Height      int
	Stats       rembg.Stats
}

type statsRemover interface {
	RemoveWithStats(ctx context.Context, img image.Image) (*image.NRGBA, rembg.Stats, error)
}

// Pipeline 解码 -> 逐像素抠图 -> PNG 编码 -> 写文件
type Pipeline struct {
	RemBG rembg.Remover
	Options
}

func New(remover rembg.Remover, opts Options) *Pipeline {
	return &Pipeline{
		RemBG:   remover,
		Options: opts,
	}
}

// Run 用指定的分类器处理一张图片
func Run(ctx context.Context, inputPath, outputPath string, c rembg.Classifier) (*Result, error) {
	return New(rembg.NewHeuristicRemBG(c), Options{}).Run(ctx, inputPath, outputPath)
}

func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	defer util.Trace("pipeline " + filepath.Base(inputPath))()

	src, format, err := util.LoadImage(ctx, inputPath)
	if err != nil {
		return nil, &ImageDecodeError{Path: inputPath, Err: err}
	}
	slog.Debug("image decoded", "path", inputPath, "format", format,
		"width", src.Bounds().Dx(), "height", src.Bounds().Dy())

	out, stats, err := p.remove(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}

	if err := WriteFile(outputPath, out); err != nil {
		return nil, err
	}

	res := &Result{
		OutputPath: outputPath,
		Format:     format,
		Width:      out.Bounds().Dx(),
		Height:     out.Bounds().Dy(),
		Stats:      stats,
	}

	if p.PreviewPath != "" {
		if err := WriteFile(p.PreviewPath, Preview(out, p.PreviewSize)); err != nil {
			return nil, err
		}
		res.PreviewPath = p.PreviewPath
	}

	slog.Info("background removed", "input", inputPath, "output", outputPath,
		"erased", stats.Erased, "total", stats.Total)

	return res, nil
}

func (p *Pipeline) remove(ctx context.Context, src image.Image) (image.Image, rembg.Stats, error) {
	if p.RemBG == nil {
		return nil, rembg.Stats{}, errors.New("nil remover")
	}
	if sr, ok := p.RemBG.(statsRemover); ok {
		out, stats, err := sr.RemoveWithStats(ctx, src)
		if err != nil {
			return nil, rembg.Stats{}, err
		}
		return out, stats, nil
	}

	out, err := p.RemBG.Remove(ctx, src)
	if err != nil {
		return nil, rembg.Stats{}, err
	}
	b := out.Bounds()
	return out, rembg.Stats{Total: b.Dx() * b.Dy()}, nil
}

// Encode PNG 编码，NRGBA 输入按非预乘 alpha 写出
func Encode(w io.Writer, img image.Image) error {
	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, img)
}

// WriteFile 先写同目录临时文件再 rename，失败时不会留下写了一半的输出
func WriteFile(path string, img image.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".chromakey-*.png")
	if err != nil {
		return &ImageEncodeError{Path: path, Err: err}
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := Encode(tmp, img); err != nil {
		_ = tmp.Close()
		return &ImageEncodeError{Path: path, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return &ImageEncodeError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ImageEncodeError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &ImageEncodeError{Path: path, Err: err}
	}
	return nil
}
