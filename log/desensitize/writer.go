package desensitize

import (
	"io"
)

// Writer 在写入前对内容脱敏
type Writer struct {
	writer io.Writer
	hook   *Hook
}

// NewWriter 创建脱敏 writer
func NewWriter(writer io.Writer, hook *Hook) *Writer {
	if writer == nil || hook == nil {
		panic("desensitize: writer and hook cannot be nil")
	}
	return &Writer{writer: writer, hook: hook}
}

// Write 实现 io.Writer；返回值始终是原始长度，避免上层 zerolog 误判短写
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook.RuleCount() == 0 {
		return w.writer.Write(p)
	}

	text := string(p)
	out := w.hook.Desensitize(text)
	if out == text {
		return w.writer.Write(p)
	}

	if _, err := io.WriteString(w.writer, out); err != nil {
		return 0, err
	}
	return len(p), nil
}
