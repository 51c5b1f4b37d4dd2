package desensitize

import (
	"fmt"
	"regexp"
	"sync/atomic"
)

// Rule 脱敏规则
type Rule interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Process(s string) string
}

type toggle struct {
	disabled atomic.Bool
}

func (t *toggle) Enabled() bool {
	return !t.disabled.Load()
}

func (t *toggle) SetEnabled(enabled bool) {
	t.disabled.Store(!enabled)
}

// ContentRule 按内容匹配替换，replacement 支持 $1 形式的分组引用
type ContentRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustNewContentRule 创建内容规则，失败时 panic
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 替换 JSON 中指定字段（忽略大小写）的字符串值
type FieldRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewFieldRule 创建字段规则
func NewFieldRule(name, field, replacement string) (*FieldRule, error) {
	if name == "" || field == "" {
		return nil, fmt.Errorf("rule name and field cannot be empty")
	}
	re, err := regexp.Compile(fmt.Sprintf(`(?i)("%s"\s*:\s*")(?:[^"\\]|\\.)*(")`, regexp.QuoteMeta(field)))
	if err != nil {
		return nil, err
	}
	return &FieldRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustNewFieldRule 创建字段规则，失败时 panic
func MustNewFieldRule(name, field, replacement string) *FieldRule {
	r, err := NewFieldRule(name, field, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, "${1}"+r.replacement+"${2}")
}
