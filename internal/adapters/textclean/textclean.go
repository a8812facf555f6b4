// Package textclean sanitizes HTML fragments before they reach the browser.
package textclean

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func popup() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("div", "h3", "p", "strong", "em", "br")
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("div", "p")
		policy = p
	})
	return policy
}

// Fragment keeps the popup markup (div, h3, p, strong, em, br and class
// names) and drops every other element and attribute. Escaped text stays
// escaped.
func Fragment(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return popup().Sanitize(s)
}
