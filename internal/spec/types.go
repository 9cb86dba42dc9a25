package spec

type Config struct {
	Version    int              `yaml:"version"`
	Backend    BackendConfig    `yaml:"backend"`
	Subjects   []string         `yaml:"subjects"`
	LLMs       []LLMConfig      `yaml:"llms"`
	DefaultLLM string           `yaml:"default_llm"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Server     ServerConfig     `yaml:"server"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LLMConfig struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type EvaluationConfig struct {
	Models          []string `yaml:"models"`
	DefaultCategory string   `yaml:"default_category"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ArchiveConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LLMIDs lists the configured LLM ids in order.
func (c Config) LLMIDs() []string {
	out := make([]string, 0, len(c.LLMs))
	for _, llm := range c.LLMs {
		out = append(out, llm.ID)
	}
	return out
}
