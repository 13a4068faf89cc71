// chromakey 按像素颜色去除图片背景
//
//	chromakey remove -i logo.png -o logo-transparent.png
//	chromakey serve --addr :8080
package main

import "github.com/chaos-io/chromakey/cmd"

func main() {
	cmd.Execute()
}
