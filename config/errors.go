package config

import "errors"

// Config.Validate 返回的错误，调用方用 errors.Is 判断
var (
	ErrInvalidClassifier = errors.New("invalid classifier: must be dark or chroma")
	ErrInvalidWorkers    = errors.New("invalid workers: must be non-negative")
	ErrInvalidBand       = errors.New("invalid chroma band: must be within [0, 255]")
	ErrInvalidUploadSize = errors.New("invalid max upload size: must be positive")
	ErrNoAddr            = errors.New("no listen address")
)
