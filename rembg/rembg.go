package rembg

import (
	"context"
	"image"
	"image/color"
)

// Remover 背景去除器
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// Class 单个像素的分类结果
type Class uint8

const (
	Foreground Class = iota
	Background
)

func (c Class) String() string {
	switch c {
	case Background:
		return "background"
	default:
		return "foreground"
	}
}

// Classifier 逐像素判断是否为背景，必须是纯函数（不依赖其他像素、不持有状态）
type Classifier interface {
	Classify(p color.NRGBA) Class
}

// Erased 背景像素统一替换成白色全透明，下游合成时边缘混色是中性的
var Erased = color.NRGBA{R: 255, G: 255, B: 255, A: 0}

// Apply 按分类结果返回输出像素：背景 -> Erased，前景原样保留（包括 alpha）
func Apply(c Classifier, p color.NRGBA) color.NRGBA {
	if c.Classify(p) == Background {
		return Erased
	}
	return p
}
