package log

import (
	"github.com/kochabx/portfoliohub/log/writer"
)

// Config 日志配置，对应配置文件中的 log 节点
type Config struct {
	Level       string      `json:"level" mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Caller      bool        `json:"caller" mapstructure:"caller"`
	// Plain 关闭脱敏，仅用于本地调试
	Plain       bool        `json:"plain" mapstructure:"plain"`
	File        *FileConfig `json:"file" mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Enabled          bool             `json:"enabled" mapstructure:"enabled"`
	Filepath         string           `json:"filepath" mapstructure:"filepath" default:"log"`
	Filename         string           `json:"filename" mapstructure:"filename" default:"portfoliohub"`
	FileExt          string           `json:"file_ext" mapstructure:"file_ext" default:"log"`
	RotateMode       string           `json:"rotate_mode" mapstructure:"rotate_mode" default:"size" validate:"oneof=time size"`
	RotatelogsConfig RotatelogsConfig `json:"rotatelogs_config" mapstructure:"rotatelogs_config"`
	LumberjackConfig LumberjackConfig `json:"lumberjack_config" mapstructure:"lumberjack_config"`
}

// RotatelogsConfig 按时间轮转配置
type RotatelogsConfig struct {
	MaxAge       int `json:"max_age" mapstructure:"max_age" default:"24"`
	RotationTime int `json:"rotation_time" mapstructure:"rotation_time" default:"1"`
}

// LumberjackConfig 按大小轮转配置
type LumberjackConfig struct {
	MaxSize    int  `json:"max_size" mapstructure:"max_size" default:"100"`
	MaxBackups int  `json:"max_backups" mapstructure:"max_backups" default:"5"`
	MaxAge     int  `json:"max_age" mapstructure:"max_age" default:"30"`
	Compress   bool `json:"compress" mapstructure:"compress"`
}

func (c *FileConfig) toWriterConfig() (writer.RotateConfig, error) {
	mode, err := writer.ParseRotateMode(c.RotateMode)
	if err != nil {
		return writer.RotateConfig{}, err
	}
	return writer.RotateConfig{
		Filepath: c.Filepath,
		Filename: c.Filename,
		FileExt:  c.FileExt,
		Mode:     mode,
		TimeRotateConfig: writer.TimeRotateConfig{
			MaxAge:       c.RotatelogsConfig.MaxAge,
			RotationTime: c.RotatelogsConfig.RotationTime,
		},
		SizeRotateConfig: writer.SizeRotateConfig{
			MaxSize:    c.LumberjackConfig.MaxSize,
			MaxBackups: c.LumberjackConfig.MaxBackups,
			MaxAge:     c.LumberjackConfig.MaxAge,
			Compress:   c.LumberjackConfig.Compress,
		},
	}, nil
}
