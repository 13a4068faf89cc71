package rembg

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// Kind 分类策略
type Kind string

const (
	KindDark   Kind = "dark"
	KindChroma Kind = "chroma"
)

var ErrUnknownClassifier = errors.New("unknown classifier")

// ParseKind 解析命令行 / 配置里的策略名，大小写不敏感
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDark:
		return KindDark, nil
	case KindChroma:
		return KindChroma, nil
	default:
		return "", fmt.Errorf("%w: %q (want dark or chroma)", ErrUnknownClassifier, s)
	}
}

const (
	DefaultDarkThreshold = 50
	DefaultGoldGreenBand = 50
	DefaultGoldBlueBand  = 30
	DefaultGoldMinChroma = 20
	DefaultGrayMaxChroma = 30
)

// Params 两种策略的可调参数，默认值见 DefaultParams
type Params struct {
	DarkThreshold uint8

	GoldGreenBand int
	GoldBlueBand  int
	GoldMinChroma int
	GrayMaxChroma int
}

func DefaultParams() Params {
	return Params{
		DarkThreshold: DefaultDarkThreshold,
		GoldGreenBand: DefaultGoldGreenBand,
		GoldBlueBand:  DefaultGoldBlueBand,
		GoldMinChroma: DefaultGoldMinChroma,
		GrayMaxChroma: DefaultGrayMaxChroma,
	}
}

func NewClassifier(kind Kind, p Params) (Classifier, error) {
	switch kind {
	case KindDark:
		return &DarkThresholdClassifier{Threshold: p.DarkThreshold}, nil
	case KindChroma:
		return &ChromaHeuristicClassifier{
			GoldGreenBand: p.GoldGreenBand,
			GoldBlueBand:  p.GoldBlueBand,
			GoldMinChroma: p.GoldMinChroma,
			GrayMaxChroma: p.GrayMaxChroma,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClassifier, kind)
	}
}

// DarkThresholdClassifier 亮度下限：三个通道都严格小于 Threshold 即为背景
// 不看色相也不看 alpha，足够暗的前景同样会被抠掉
type DarkThresholdClassifier struct {
	Threshold uint8
}

func NewDarkThresholdClassifier() *DarkThresholdClassifier {
	return &DarkThresholdClassifier{Threshold: DefaultDarkThreshold}
}

func (d *DarkThresholdClassifier) Classify(p color.NRGBA) Class {
	if p.R < d.Threshold && p.G < d.Threshold && p.B < d.Threshold {
		return Background
	}
	return Foreground
}

// ChromaHeuristicClassifier 灰度（低色度）像素视为背景，金色/暖黄色像素强制保留
//
//	maxDiff = max(|r-g|, |r-b|, |g-b|)
//	isGold  = r > g-GoldGreenBand && r > b+GoldBlueBand && maxDiff > GoldMinChroma
//	背景    = !isGold && maxDiff < GrayMaxChroma
//
// 偏灰的抗锯齿边缘也会被抠掉，边缘是硬边而不是渐隐
type ChromaHeuristicClassifier struct {
	GoldGreenBand int
	GoldBlueBand  int
	GoldMinChroma int
	GrayMaxChroma int
}

func NewChromaHeuristicClassifier() *ChromaHeuristicClassifier {
	return &ChromaHeuristicClassifier{
		GoldGreenBand: DefaultGoldGreenBand,
		GoldBlueBand:  DefaultGoldBlueBand,
		GoldMinChroma: DefaultGoldMinChroma,
		GrayMaxChroma: DefaultGrayMaxChroma,
	}
}

func (c *ChromaHeuristicClassifier) Classify(p color.NRGBA) Class {
	r, g, b := int(p.R), int(p.G), int(p.B)
	diff := MaxDiff(p)

	if !c.isGold(r, g, b, diff) && diff < c.GrayMaxChroma {
		return Background
	}
	return Foreground
}

func (c *ChromaHeuristicClassifier) isGold(r, g, b, diff int) bool {
	return r > g-c.GoldGreenBand && r > b+c.GoldBlueBand && diff > c.GoldMinChroma
}

// MaxDiff 通道两两差值绝对值的最大值，0 表示纯灰
func MaxDiff(p color.NRGBA) int {
	r, g, b := int(p.R), int(p.G), int(p.B)
	return max(absInt(r-g), absInt(r-b), absInt(g-b))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
