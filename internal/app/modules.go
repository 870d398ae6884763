package app

import (
	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/specialistvlad/spfrm/internal/handlers"
	"github.com/specialistvlad/spfrm/modules/file"
	"github.com/specialistvlad/spfrm/modules/http_client"
	"github.com/specialistvlad/spfrm/modules/s3"
)

// coreModules is the definitive list of transports compiled into the spfrm
// binary, configured from the manifest.
func coreModules(model *config.Model) []handlers.Module {
	return []handlers.Module{
		&file.Module{Root: model.File.Root},
		http_client.NewModule(http_client.Settings{
			Timeout:   model.HTTP.Timeout,
			UserAgent: model.HTTP.UserAgent,
		}),
		&s3.Module{Settings: s3.Settings{
			Region:       model.S3.Region,
			Endpoint:     model.S3.Endpoint,
			UsePathStyle: model.S3.UsePathStyle,
			Anonymous:    model.S3.Anonymous,
		}},
	}
}
