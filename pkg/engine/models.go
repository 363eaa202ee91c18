package engine

import "github.com/bote-dev/bote/pkg/api"

// catalog is the fixed set of models served by the bridge. The upstream
// API does not offer model discovery with limits attached, so the
// entries are pinned here.
var catalog = []api.Model{
	{
		ID:              "v0-1.5-md",
		Name:            "v0-1.5-md",
		Description:     "Everyday tasks and UI generation",
		Family:          "v0",
		Version:         "1.5",
		MaxInputTokens:  128000,
		MaxOutputTokens: 64000,
		Capabilities:    api.ModelCapabilities{ToolCalling: true, Vision: true},
	},
	{
		ID:              "v0-1.5-lg",
		Name:            "v0-1.5-lg",
		Description:     "Advanced reasoning over large contexts",
		Family:          "v0",
		Version:         "1.5",
		MaxInputTokens:  512000,
		MaxOutputTokens: 64000,
		Capabilities:    api.ModelCapabilities{ToolCalling: true, Vision: true},
	},
	{
		ID:              "v0-1.0-md",
		Name:            "v0-1.0-md",
		Description:     "Previous generation model",
		Family:          "v0",
		Version:         "1.0",
		MaxInputTokens:  128000,
		MaxOutputTokens: 64000,
		Capabilities:    api.ModelCapabilities{ToolCalling: true, Vision: true},
	},
}

// Models returns the fixed model catalog.
func Models() []api.Model {
	return catalog
}

// LookupModel returns the catalog entry for id.
func LookupModel(id string) (api.Model, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return api.Model{}, false
}
