package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var codeLanguage = regexp.MustCompile(`^language-[\w.+#-]+$`)

// NewPolicy returns the allowlist applied to every rendered body: bluemonday's
// user-generated-content policy plus language classes on code blocks. Links are
// left without a forced rel=nofollow so a second pass changes nothing.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("class").Matching(codeLanguage).OnElements("code")
	return p
}

var defaultPolicy = NewPolicy()

// Sanitize strips script-capable markup from html using the default policy.
func Sanitize(html string) string {
	return defaultPolicy.Sanitize(html)
}
