package rembg

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var ErrNoForeground = errors.New("未检测到前景区域")

// toNRGBA 转为 NRGBA（非预乘 alpha），没有 alpha 通道的图片得到全不透明的 alpha
// 输入本身是 NRGBA 时直接返回，调用方不能原地修改
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// hasUsefulAlpha 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为输入已经带透明
func hasUsefulAlpha(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[row+x*4+3] != 255 {
				return true
			}
		}
	}
	return false
}

// alphaBBox 从 alpha 通道计算主体 bounding box
// 把 alpha > threshold 的像素当作“主体”，返回的矩形使用图片自身的坐标
func alphaBBox(img *image.NRGBA, threshold uint8) (image.Rectangle, error) {
	b := img.Bounds()

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			a := img.Pix[row+(x-b.Min.X)*4+3]
			if a <= threshold {
				continue
			}
			found = true
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	if !found {
		return image.Rectangle{}, ErrNoForeground
	}

	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}
