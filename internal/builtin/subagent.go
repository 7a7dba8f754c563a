package builtin

import (
	"fmt"
	"slices"

	"github.com/hugsylabs/hugsy/internal/config"
	"github.com/hugsylabs/hugsy/internal/frontmatter"
	"github.com/hugsylabs/hugsy/internal/plugin"
)

// SubagentPrefix is prepended to a subagent name to form its plugin name
const SubagentPrefix = "agent-"

// AgentDefaults fill fields a subagent document does not set
type AgentDefaults struct {
	Name        string
	Description string
	Tools       []string
}

// AgentFromDocument builds a subagent from a frontmatter document. Missing
// header fields take their value from defaults.
func AgentFromDocument(doc string, defaults AgentDefaults) config.AgentSpec {
	parsed := frontmatter.Parse(doc)

	agent := config.AgentSpec{
		Name:        defaults.Name,
		Description: defaults.Description,
		Tools:       slices.Clone(defaults.Tools),
		Content:     parsed.Body,
	}
	if name, ok := parsed.Metadata.String("name"); ok && name != "" {
		agent.Name = name
	}
	if desc, ok := parsed.Metadata.String("description"); ok && desc != "" {
		agent.Description = desc
	}
	if tools, ok := parsed.Metadata.Strings(frontmatter.DefaultListKey); ok && len(tools) > 0 {
		agent.Tools = tools
	}
	return agent
}

// SubagentPlugin returns a plugin that registers the subagent described by
// doc. The document is parsed once, when the plugin is created, and the
// plugin replaces any subagent of the same name. Empty meta fields are
// derived from the subagent.
func SubagentPlugin(meta plugin.Meta, doc string, defaults AgentDefaults) (plugin.Plugin, error) {
	agent := AgentFromDocument(doc, defaults)
	if agent.Name == "" {
		return nil, fmt.Errorf("subagent document has no name")
	}
	if meta.Name == "" {
		meta.Name = SubagentPrefix + agent.Name
	}
	if meta.Version == "" {
		meta.Version = "0.0.1"
	}
	if meta.Description == "" {
		meta.Description = agent.Description
	}

	return plugin.Mutate(meta, func(s *config.Settings) error {
		entry := agent
		entry.Tools = slices.Clone(agent.Tools)
		return s.AddAgents(map[string]config.AgentSpec{agent.Name: entry}, true)
	}), nil
}

// SecurityEngineerName is the name of the security engineer subagent plugin
const SecurityEngineerName = "plugin-security-engineer"

// SecurityEngineerDefaults are used when the embedded document omits a field
var SecurityEngineerDefaults = AgentDefaults{
	Name:        "security-engineer",
	Description: "Security engineering expert",
	Tools:       []string{"Read", "Write", "MultiEdit", "Bash", "Grep", "LS", "WebFetch", "WebSearch"},
}

// SecurityEngineer returns the security engineer subagent plugin
func SecurityEngineer() (plugin.Plugin, error) {
	docs, err := readDocs("agents")
	if err != nil {
		return nil, err
	}
	doc, ok := docs["security-engineer"]
	if !ok {
		return nil, fmt.Errorf("embedded security-engineer document missing")
	}

	return SubagentPlugin(plugin.Meta{
		Name:        SecurityEngineerName,
		Version:     "0.0.1",
		Description: "Adds a specialized security engineering subagent with DevSecOps expertise",
	}, doc, SecurityEngineerDefaults)
}
