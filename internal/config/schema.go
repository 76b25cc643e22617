package config

import (
	"sort"

	"github.com/knadh/koanf/v2"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeEnum
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key.
type ConfigKeySchema struct {
	Path          string          // Key name as written in config files
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum and list types
	Description   string          // Human-readable description for help text
	// Secret values accept env:NAME indirection and are never printed.
	Secret bool
}

// SupportedModels are the chat models accepted for ai_model.
var SupportedModels = []string{"gpt-4o-mini", "gpt-4", "gpt-4-turbo", "gpt-3.5-turbo"}

// KnownKeys is the registry of all configuration keys.
var KnownKeys = map[string]ConfigKeySchema{
	"output": {
		Path:        "output",
		Type:        TypeString,
		Description: "Changelog file path",
	},
	"version_file": {
		Path:        "version_file",
		Type:        TypeString,
		Description: "File whose version string is updated on release (empty disables)",
	},
	"version_pattern": {
		Path:        "version_pattern",
		Type:        TypeString,
		Description: "Pattern locating the version in version_file; must contain {version}",
	},
	"categories": {
		Path:          "categories",
		Type:          TypeList,
		AllowedValues: categoryValues(),
		Description:   "Enabled changelog sections, in output order",
	},
	"github_release": {
		Path:        "github_release",
		Type:        TypeBool,
		Description: "Publish a GitHub release after generating",
	},
	"github_token": {
		Path:        "github_token",
		Type:        TypeString,
		Description: "GitHub token (env:NAME reads an environment variable)",
		Secret:      true,
	},
	"ai_enabled": {
		Path:        "ai_enabled",
		Type:        TypeBool,
		Description: "Rewrite descriptions and summarize versions with OpenAI",
	},
	"ai_model": {
		Path:          "ai_model",
		Type:          TypeEnum,
		AllowedValues: SupportedModels,
		Description:   "OpenAI chat model",
	},
	"openai_api_key": {
		Path:        "openai_api_key",
		Type:        TypeString,
		Description: "OpenAI API key (env:NAME reads an environment variable)",
		Secret:      true,
	},
	"ai_base_url": {
		Path:        "ai_base_url",
		Type:        TypeString,
		Description: "OpenAI-compatible API endpoint override",
	},
	"ai_concurrency": {
		Path:        "ai_concurrency",
		Type:        TypeInt,
		Description: "Changes enhanced in parallel (1-16)",
	},
	"tag_prefix": {
		Path:        "tag_prefix",
		Type:        TypeString,
		Description: "Prefix of release tags (e.g. v for v1.2.3)",
	},
}

// ErrUnknownKey is returned for keys outside the registry.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// checkUnknownKeys rejects config file keys outside the registry.
func checkUnknownKeys(fk *koanf.Koanf, filePath string) error {
	var unknown []string
	for _, key := range fk.Keys() {
		if _, ok := KnownKeys[key]; ok {
			continue
		}
		unknown = append(unknown, key)
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)
	return &ValidationError{
		FilePath: filePath,
		Field:    unknown[0],
		Message:  ErrUnknownKey{Key: unknown[0]}.Error(),
	}
}
