package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	AppName = "chromakey"

	// DefaultConfigFile 当前目录下的配置文件名
	DefaultConfigFile = ".chromakey.yaml"
)

var ErrConfigNotFound = errors.New("configuration file not found")

// LoadFile 在默认值之上解析 YAML 配置文件
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // 用户指定的配置路径
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile 查找顺序：
// 1. 显式指定的路径
// 2. 当前目录下的 .chromakey.yaml
// 3. $XDG_CONFIG_HOME/chromakey/config.yaml
//
// 找不到返回空字符串
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}

	return ""
}

// Load 显式路径找不到时报错，没有显式路径且没找到文件时返回默认配置
func Load(configPath string) (*Config, error) {
	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, ErrConfigNotFound
		}
		return Default(), nil
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
