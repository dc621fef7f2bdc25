package assets

import "github.com/spaghettifunk/cardforge/engine/renderer/metadata"

type Loader interface {
	Load(path string, params interface{}) (*metadata.Resource, error)
	// Decode reads an in-memory blob. name is only used for diagnostics.
	Decode(name string, data []byte, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
