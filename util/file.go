package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	nhttp "github.com/chaos-io/chromakey/util/http"
)

var client = nhttp.NewHTTPClient()

// IsURL 判断输入是否是 http(s) 地址
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// LoadImage 打开本地图片或下载远程图片，返回图片和格式名
func LoadImage(ctx context.Context, path string) (image.Image, string, error) {
	if IsURL(path) {
		return DownloadImage(ctx, path)
	}
	return OpenImage(path)
}

// DownloadImage 下载图片
func DownloadImage(ctx context.Context, url string) (image.Image, string, error) {
	var data []byte
	err := client.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: url,
		Method:     http.MethodGet,
		Response:   &data,
	})
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}

	return image.Decode(bytes.NewReader(data))
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return image.Decode(file)
}

// DecodeImage 从 reader 解码，支持的格式同 OpenImage
func DecodeImage(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}
