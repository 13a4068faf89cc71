package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrImageDecode = errors.New("image decode error")
	ErrImageEncode = errors.New("image encode error")
)

// ImageDecodeError 输入不存在、不可读或格式不支持
type ImageDecodeError struct {
	Path string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

func (e *ImageDecodeError) Is(target error) bool { return target == ErrImageDecode }

// ImageEncodeError 输出无法创建或写入
type ImageEncodeError struct {
	Path string
	Err  error
}

func (e *ImageEncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *ImageEncodeError) Unwrap() error { return e.Err }

func (e *ImageEncodeError) Is(target error) bool { return target == ErrImageEncode }
