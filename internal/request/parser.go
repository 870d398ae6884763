package request

import (
	"strconv"
	"strings"
	"time"
)

// directive applies one parsed 'name=value' segment to a request.
type directive func(req *Request, value string)

// directives is the fixed table of recognized directive names.
var directives = map[string]directive{
	"async": func(req *Request, _ string) {
		req.Async = true
	},
	"timeout": func(req *Request, value string) {
		ms, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || ms < 0 {
			return
		}
		req.Timeout = time.Duration(ms) * time.Millisecond
	},
}

// Parse splits a raw request string into its directives and address. It never
// fails: malformed or unknown directives are skipped and the final segment is
// taken as the address, even when empty.
func Parse(rawKey string, defaultTimeout time.Duration) Request {
	if defaultTimeout < 0 {
		defaultTimeout = DefaultTimeout
	}
	req := Request{
		Key:     rawKey,
		Timeout: defaultTimeout,
	}

	segments := strings.Split(rawKey, Separator)
	req.Address = segments[len(segments)-1]

	for _, segment := range segments[:len(segments)-1] {
		name, value, _ := strings.Cut(segment, "=")
		if apply, ok := directives[strings.TrimSpace(name)]; ok {
			apply(&req, value)
		}
	}
	return req
}

// Known reports whether name is a recognized directive.
func Known(name string) bool {
	_, ok := directives[name]
	return ok
}
