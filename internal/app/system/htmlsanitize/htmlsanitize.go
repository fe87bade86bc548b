// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-generated
// content before it is stored. Post bodies and comments keep basic
// formatting; names and titles are reduced to plain text.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize removes scripts, event handlers, and unsafe URLs while
// preserving common formatting elements.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// PlainText strips all markup, leaving only text content.
func PlainText(s string) string {
	return strict.Sanitize(s)
}
