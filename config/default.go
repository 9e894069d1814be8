package config

import _ "embed"

// DefaultConfigYAML 内置默认配置，外部配置文件可覆盖其中任意项
//
//go:embed config.default.yaml
var DefaultConfigYAML []byte
