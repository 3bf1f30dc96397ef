package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// CurrentVersion is the only configuration schema version understood.
const CurrentVersion = 1

// Defaults holds run defaults that flags may override.
type Defaults struct {
	Mode       types.SyncMode `yaml:"mode,omitempty"`
	Profile    string         `yaml:"profile,omitempty"`
	SourceRoot string         `yaml:"sourceRoot,omitempty"`
}

// Agent pairs an agent id with its configuration.
type Agent struct {
	ID string
	types.AgentConfig
}

// AgentList preserves the declaration order of the agents mapping, which
// fixes the order mappings are resolved and applied in.
type AgentList []Agent

// UnmarshalYAML decodes a YAML mapping into an ordered agent list.
func (l *AgentList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfigParse, "agents must be a mapping of agent id to agent config")
	}

	agents := make(AgentList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		val := value.Content[i+1]

		var ac types.AgentConfig
		if err := val.Decode(&ac); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "agent %q", key.Value)
		}
		agents = append(agents, Agent{ID: key.Value, AgentConfig: ac})
	}

	*l = agents
	return nil
}

// MarshalYAML re-emits the agents mapping in declaration order so the file
// round-trips losslessly.
func (l AgentList) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, agent := range l {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: agent.ID}
		valNode := &yaml.Node{}
		if err := valNode.Encode(agent.AgentConfig); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// Config is the fully-typed configuration consumed by the sync engine.
type Config struct {
	Version  int                            `yaml:"version"`
	Defaults Defaults                       `yaml:"defaults,omitempty"`
	Agents   AgentList                      `yaml:"agents"`
	Profiles map[string]types.ProfileConfig `yaml:"profiles,omitempty"`
}

// Agent returns the agent with the given id.
func (c *Config) Agent(id string) (*Agent, bool) {
	for i := range c.Agents {
		if c.Agents[i].ID == id {
			return &c.Agents[i], true
		}
	}
	return nil, false
}

// Profile returns the profile with the given name.
func (c *Config) Profile(name string) (types.ProfileConfig, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "malformed configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints that parsing alone cannot.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return errors.Newf(errors.ErrConfigValid, "unsupported configuration version %d (expected %d)", c.Version, CurrentVersion)
	}

	if c.Defaults.Mode != "" && !c.Defaults.Mode.IsValid() {
		return errors.Newf(errors.ErrConfigValid, "defaults.mode %q is not one of auto, link, copy", c.Defaults.Mode)
	}

	for _, agent := range c.Agents {
		if agent.ID == "" {
			return errors.New(errors.ErrConfigValid, "agent id must not be empty")
		}
		if err := validateScope(agent.ID, "global", agent.Global); err != nil {
			return err
		}
		if err := validateScope(agent.ID, "project", agent.Project); err != nil {
			return err
		}
	}

	for name, profile := range c.Profiles {
		if name == "" {
			return errors.New(errors.ErrConfigValid, "profile name must not be empty")
		}
		for _, entry := range profile.Files {
			if entry.Source == "" || entry.Target == "" {
				return errors.Newf(errors.ErrConfigValid, "profile %q has a mapping with an empty source or target", name)
			}
		}
	}

	return nil
}

func validateScope(agentID, scopeName string, sc *types.ScopeConfig) error {
	if sc == nil {
		return nil
	}
	if sc.Root == "" {
		return errors.Newf(errors.ErrConfigValid, "agent %q %s scope is missing a root", agentID, scopeName)
	}
	for _, entry := range sc.Files {
		if entry.Source == "" || entry.Target == "" {
			return errors.Newf(errors.ErrConfigValid, "agent %q %s scope has a mapping with an empty source or target", agentID, scopeName)
		}
	}
	return nil
}

// Marshal serializes the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot serialize configuration")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot serialize configuration")
	}
	return buf.Bytes(), nil
}

// Load reads and parses the configuration file under sourceRoot.
func Load(filesys types.FS, sourceRoot string) (*Config, error) {
	path := paths.ConfigPath(sourceRoot)
	data, err := filesys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrConfigLoad, "no configuration at %s (run 'agentconfig init' to create one)", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
	}
	return Parse(data)
}

// Save writes the configuration file under sourceRoot.
func Save(filesys types.FS, sourceRoot string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := filesys.WriteFile(paths.ConfigPath(sourceRoot), data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", paths.ConfigPath(sourceRoot))
	}
	return nil
}
