package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentFilterCheck(t *testing.T) {
	filter := NewContentFilter()

	cases := []struct {
		name   string
		text   string
		ok     bool
		reason string
	}{
		{"clean text", "Saw someone checking car doors near lot B.", true, ""},
		{"empty text", "", true, ""},
		{"banned word", "this is bullshit", false, "inappropriate_language"},
		{"banned word mixed case", "What the FuCk happened here", false, "inappropriate_language"},
		{"banned word as substring is fine", "the classroom was reassigned", true, ""},
		{"http url", "details at http://example.com/report", false, "url_not_allowed"},
		{"bare www url", "see www.sketchy.site for more", false, "url_not_allowed"},
		{"repeated chars", "helloooooo anyone there", false, "spam_detected"},
		{"repeated punctuation", "what!!!!!", false, "spam_detected"},
		{"four repeats allowed", "soooo glad campus security showed up", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := filter.Check(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestContentFilterRejectionMessage(t *testing.T) {
	filter := NewContentFilter()

	assert.Contains(t, filter.RejectionMessage("inappropriate_language"), "inappropriate language")
	assert.Contains(t, filter.RejectionMessage("url_not_allowed"), "not allowed")
	assert.Contains(t, filter.RejectionMessage("spam_detected"), "spam")
	assert.Equal(t, "Your comment does not meet the content guidelines.", filter.RejectionMessage("unknown_reason"))
}
