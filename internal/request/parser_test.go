package request

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		rawKey   string
		expected Request
	}{
		{
			name:     "bare address",
			rawKey:   "foo.js",
			expected: Request{Key: "foo.js", Address: "foo.js", Timeout: DefaultTimeout},
		},
		{
			name:     "timeout directive",
			rawKey:   "timeout=500!foo.js",
			expected: Request{Key: "timeout=500!foo.js", Address: "foo.js", Timeout: 500 * time.Millisecond},
		},
		{
			name:     "zero timeout is accepted",
			rawKey:   "timeout=0!foo.js",
			expected: Request{Key: "timeout=0!foo.js", Address: "foo.js", Timeout: 0},
		},
		{
			name:     "negative timeout keeps default",
			rawKey:   "timeout=-5!foo.js",
			expected: Request{Key: "timeout=-5!foo.js", Address: "foo.js", Timeout: DefaultTimeout},
		},
		{
			name:     "non numeric timeout keeps default",
			rawKey:   "timeout=soon!foo.js",
			expected: Request{Key: "timeout=soon!foo.js", Address: "foo.js", Timeout: DefaultTimeout},
		},
		{
			name:     "timeout with unit suffix keeps default",
			rawKey:   "timeout=500ms!foo.js",
			expected: Request{Key: "timeout=500ms!foo.js", Address: "foo.js", Timeout: DefaultTimeout},
		},
		{
			name:     "timeout without value keeps default",
			rawKey:   "timeout!foo.js",
			expected: Request{Key: "timeout!foo.js", Address: "foo.js", Timeout: DefaultTimeout},
		},
		{
			name:     "async needs no value",
			rawKey:   "async!https://cdn.example.com/a.js",
			expected: Request{Key: "async!https://cdn.example.com/a.js", Address: "https://cdn.example.com/a.js", Timeout: DefaultTimeout, Async: true},
		},
		{
			name:   "directives combine",
			rawKey: "async!timeout=250!a.js",
			expected: Request{
				Key: "async!timeout=250!a.js", Address: "a.js", Timeout: 250 * time.Millisecond, Async: true,
			},
		},
		{
			name:     "later timeout wins",
			rawKey:   "timeout=100!timeout=200!a.js",
			expected: Request{Key: "timeout=100!timeout=200!a.js", Address: "a.js", Timeout: 200 * time.Millisecond},
		},
		{
			name:     "unknown directives are ignored",
			rawKey:   "defer=yes!a.js",
			expected: Request{Key: "defer=yes!a.js", Address: "a.js", Timeout: DefaultTimeout},
		},
		{
			name:     "empty address",
			rawKey:   "async!",
			expected: Request{Key: "async!", Address: "", Timeout: DefaultTimeout, Async: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.rawKey, DefaultTimeout)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.rawKey, diff)
			}
		})
	}
}

func TestParse_CustomDefaultTimeout(t *testing.T) {
	req := Parse("a.js", 3*time.Second)
	assert.Equal(t, 3*time.Second, req.Timeout)

	req = Parse("a.js", -1)
	assert.Equal(t, DefaultTimeout, req.Timeout)
}

func TestRequest_Name(t *testing.T) {
	testCases := map[string]string{
		"a.js":                                "a.js",
		"https://cdn.example.com/js/easel.js": "easel.js",
		"https://cdn.example.com/js/easel.js?v=2": "easel.js",
		"timeout=5!https://cdn.example.com/tw.js": "tw.js",
		"s3://bucket/anim/intro.js#frag":          "intro.js",
		"https://cdn.example.com/js/":             "",
		"lib/a.js?from=x/y":                       "a.js",
	}
	for raw, expected := range testCases {
		assert.Equal(t, expected, Parse(raw, DefaultTimeout).Name(), "name of %q", raw)
	}
}

func TestRequest_Scheme(t *testing.T) {
	assert.Equal(t, "https", Parse("HTTPS://cdn.example.com/a.js", DefaultTimeout).Scheme())
	assert.Equal(t, "s3", Parse("async!s3://bucket/a.js", DefaultTimeout).Scheme())
	assert.Equal(t, "", Parse("js/a.js", DefaultTimeout).Scheme())
	assert.Equal(t, "", Parse("://a.js", DefaultTimeout).Scheme())
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("async"))
	assert.True(t, Known("timeout"))
	assert.False(t, Known("defer"))
}
