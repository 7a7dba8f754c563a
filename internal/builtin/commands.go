package builtin

import (
	"github.com/hugsylabs/hugsy/internal/config"
	"github.com/hugsylabs/hugsy/internal/frontmatter"
	"github.com/hugsylabs/hugsy/internal/plugin"
)

// DevCommandsName is the name of the development slash command plugin
const DevCommandsName = "commands-dev"

// DevCommandSpecs returns the development slash commands keyed by name
func DevCommandSpecs() (map[string]config.CommandSpec, error) {
	docs, err := readDocs("commands")
	if err != nil {
		return nil, err
	}

	specs := make(map[string]config.CommandSpec, len(docs))
	for name, raw := range docs {
		doc := frontmatter.Parse(raw)
		spec := config.CommandSpec{Content: doc.Body}
		spec.Description, _ = doc.Metadata.String("description")
		spec.ArgumentHint, _ = doc.Metadata.String("argumentHint")
		specs[name] = spec
	}
	return specs, nil
}

// DevCommands returns the plugin that registers the development commands.
// Built-in commands yield to the project's own: a name the document already
// defines is kept as it is.
func DevCommands() (plugin.Plugin, error) {
	specs, err := DevCommandSpecs()
	if err != nil {
		return nil, err
	}
	return plugin.Mutate(plugin.Meta{
		Name:        DevCommandsName,
		Version:     "0.0.1",
		Description: "Essential development commands for productive coding",
	}, func(s *config.Settings) error {
		return s.AddCommands(specs, false)
	}), nil
}
