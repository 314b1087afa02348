// pkg/sanitize/sanitize.go
package sanitize

import "github.com/microcosm-cc/bluemonday"

// HTMLSanitizer 基于bluemonday的HTML消毒器。
// 去除脚本执行向量，保留安全的排版标签。消毒只在写入时做一次，
// 落库后的内容不存在重新消毒的路径。
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer 创建UGC策略的消毒器
func NewHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.UGCPolicy()}
}

// Sanitize 消毒不可信的HTML内容
func (s *HTMLSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
