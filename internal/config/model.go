package config

import "time"

// Model is the unified, format-agnostic representation of all loaded
// manifests.
type Model struct {
	Settings Settings
	HTTP     HTTP
	S3       S3
	File     File
	Notify   *Notify

	// Profiles are kept in declaration order. A later profile with the same
	// name replaces an earlier one when declared.
	Profiles []*Profile

	// BaseDir is the directory of the first manifest path.
	BaseDir string
}

// Settings holds engine-wide settings.
type Settings struct {
	// DefaultTimeout applies to requests without a timeout directive. Zero
	// means the engine default.
	DefaultTimeout time.Duration
	// Variables are injected into request strings.
	Variables map[string]string
}

// HTTP configures the http and https transport.
type HTTP struct {
	Timeout   time.Duration
	UserAgent string
}

// S3 configures the s3 transport.
type S3 struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
	Anonymous    bool
}

// File configures the local file transport.
type File struct {
	// Root resolves relative addresses. Empty means BaseDir.
	Root string
}

// Notify configures the socket.io notifier. A nil Notify disables it.
type Notify struct {
	SocketIOURL        string
	Namespace          string
	Event              string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// Profile is a named set of dependency groups.
type Profile struct {
	Name     string
	Autoload bool
	Needs    []*NeedGroup
}

// NeedGroup is a set of request strings that settle together under one
// callback.
type NeedGroup struct {
	Name string
	URLs []string
}

// Keys returns every request string of the profile in declaration order.
func (p *Profile) Keys() []string {
	var keys []string
	for _, need := range p.Needs {
		keys = append(keys, need.URLs...)
	}
	return keys
}

// Profile returns the last profile declared under name.
func (m *Model) Profile(name string) (*Profile, bool) {
	for i := len(m.Profiles) - 1; i >= 0; i-- {
		if m.Profiles[i].Name == name {
			return m.Profiles[i], true
		}
	}
	return nil, false
}

// Autoload returns the names of the profiles marked for autoload, in
// declaration order and without duplicates. Only the effective declaration
// of each name counts.
func (m *Model) Autoload() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, p := range m.Profiles {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		if effective, _ := m.Profile(p.Name); effective.Autoload {
			names = append(names, p.Name)
		}
	}
	return names
}
