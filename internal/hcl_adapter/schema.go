package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings []*SettingsBlock `hcl:"settings,block"`
	HTTP     []*HTTPBlock     `hcl:"http,block"`
	S3       []*S3Block       `hcl:"s3,block"`
	File     []*FileBlock     `hcl:"file,block"`
	Notify   []*NotifyBlock   `hcl:"notify,block"`
	Profiles []*ProfileBlock  `hcl:"profile,block"`
	Remain   hcl.Body         `hcl:",remain"`
}

// SettingsBlock maps the `settings` block.
type SettingsBlock struct {
	DefaultTimeout string         `hcl:"default_timeout,optional"`
	Variables      hcl.Expression `hcl:"variables,optional"`
}

// HTTPBlock maps the `http` block.
type HTTPBlock struct {
	Timeout   string `hcl:"timeout,optional"`
	UserAgent string `hcl:"user_agent,optional"`
}

// S3Block maps the `s3` block.
type S3Block struct {
	Region       string `hcl:"region,optional"`
	Endpoint     string `hcl:"endpoint,optional"`
	UsePathStyle bool   `hcl:"use_path_style,optional"`
	Anonymous    bool   `hcl:"anonymous,optional"`
}

// FileBlock maps the `file` block.
type FileBlock struct {
	Root string `hcl:"root,optional"`
}

// NotifyBlock maps the `notify` block.
type NotifyBlock struct {
	SocketIOURL        string `hcl:"socketio_url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	ConnectTimeout     string `hcl:"connect_timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// ProfileBlock maps a `profile "<name>"` block.
type ProfileBlock struct {
	Name     string       `hcl:"name,label"`
	Autoload bool         `hcl:"autoload,optional"`
	Needs    []*NeedBlock `hcl:"need,block"`
}

// NeedBlock maps a `need "<group>"` block inside a profile.
type NeedBlock struct {
	Name string         `hcl:"name,label"`
	URLs hcl.Expression `hcl:"urls"`
}
