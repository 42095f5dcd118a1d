package importer

import "forum-importer/feature/zendesk/identity"

// Dump sources.
const (
	SourceDir    = "dir"
	SourceBucket = "bucket"
)

// Config holds the settings of an import run.
type Config struct {
	// Source selects where the unpacked dump is read from: "dir" or "bucket".
	Source string `mapstructure:"source" default:"dir"`
	// Path is the dump directory when Source is "dir".
	Path string `mapstructure:"path" default:"./dump"`
	// Prefix is the object key prefix of the dump when Source is "bucket".
	Prefix string `mapstructure:"prefix" default:""`
	// AdminUsername is the platform account locked threads are closed by.
	AdminUsername string `mapstructure:"admin_username" default:""`
	// ProgressEvery sets how many records pass between progress lines.
	ProgressEvery int `mapstructure:"progress_every" default:"500"`
	// Identity controls email masking and OpenID association.
	Identity identity.Config `mapstructure:"identity"`
}
