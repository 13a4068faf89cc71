package config

import (
	"fmt"

	"github.com/chaos-io/chromakey/rembg"
)

// 默认值，与最初调好那张 logo 时用的参数一致
const (
	DefaultClassifier = string(rembg.KindChroma)

	DefaultDarkThreshold = rembg.DefaultDarkThreshold
	DefaultGoldGreenBand = rembg.DefaultGoldGreenBand
	DefaultGoldBlueBand  = rembg.DefaultGoldBlueBand
	DefaultGoldMinChroma = rembg.DefaultGoldMinChroma
	DefaultGrayMaxChroma = rembg.DefaultGrayMaxChroma

	DefaultAddr          = ":8080"
	DefaultMaxUploadSize = 32 << 20
	DefaultPreviewSize   = 256
)

// Config 所有可调参数，文件里没写的字段保持默认值
type Config struct {
	Classifier string `yaml:"classifier"`

	Dark   DarkConfig   `yaml:"dark"`
	Chroma ChromaConfig `yaml:"chroma"`

	// Workers 并发行带数，0 表示 CPU 数
	Workers int `yaml:"workers"`

	PreviewSize uint `yaml:"preview_size"`

	Server ServerConfig `yaml:"server"`

	Verbose bool `yaml:"verbose"`
}

type DarkConfig struct {
	Threshold uint8 `yaml:"threshold"`
}

type ChromaConfig struct {
	GoldGreenBand int `yaml:"gold_green_band"`
	GoldBlueBand  int `yaml:"gold_blue_band"`
	GoldMinChroma int `yaml:"gold_min_chroma"`
	GrayMaxChroma int `yaml:"gray_max_chroma"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

func Default() *Config {
	return &Config{
		Classifier: DefaultClassifier,
		Dark:       DarkConfig{Threshold: DefaultDarkThreshold},
		Chroma: ChromaConfig{
			GoldGreenBand: DefaultGoldGreenBand,
			GoldBlueBand:  DefaultGoldBlueBand,
			GoldMinChroma: DefaultGoldMinChroma,
			GrayMaxChroma: DefaultGrayMaxChroma,
		},
		PreviewSize: DefaultPreviewSize,
		Server: ServerConfig{
			Addr:          DefaultAddr,
			MaxUploadSize: DefaultMaxUploadSize,
		},
	}
}

func (c *Config) Validate() error {
	if _, err := rembg.ParseKind(c.Classifier); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidClassifier, c.Classifier)
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	for _, v := range []int{c.Chroma.GoldGreenBand, c.Chroma.GoldBlueBand, c.Chroma.GoldMinChroma, c.Chroma.GrayMaxChroma} {
		if v < 0 || v > 255 {
			return ErrInvalidBand
		}
	}
	if c.Server.MaxUploadSize <= 0 {
		return ErrInvalidUploadSize
	}
	if c.Server.Addr == "" {
		return ErrNoAddr
	}
	return nil
}

// Kind 已通过 Validate 的配置直接取策略
func (c *Config) Kind() rembg.Kind {
	k, err := rembg.ParseKind(c.Classifier)
	if err != nil {
		return rembg.KindChroma
	}
	return k
}

func (c *Config) Params() rembg.Params {
	return rembg.Params{
		DarkThreshold: c.Dark.Threshold,
		GoldGreenBand: c.Chroma.GoldGreenBand,
		GoldBlueBand:  c.Chroma.GoldBlueBand,
		GoldMinChroma: c.Chroma.GoldMinChroma,
		GrayMaxChroma: c.Chroma.GrayMaxChroma,
	}
}

// NewRemover 按配置构造抠图器
func (c *Config) NewRemover() (*rembg.HeuristicRemBG, error) {
	return c.RemoverFor(c.Kind())
}

// RemoverFor 使用配置里的参数，但策略由调用方指定
func (c *Config) RemoverFor(kind rembg.Kind) (*rembg.HeuristicRemBG, error) {
	classifier, err := rembg.NewClassifier(kind, c.Params())
	if err != nil {
		return nil, err
	}
	h := rembg.NewHeuristicRemBG(classifier)
	if c.Workers > 0 {
		h.Workers = c.Workers
	}
	return h, nil
}
