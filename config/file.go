package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultFileNames are looked up in the working directory when no
// configuration file is named explicitly.
var DefaultFileNames = []string{"sqljson.yaml", "sqljson.yml", "sqljson.json"}

// EnvPrefix prefixes the environment variables overriding file settings, e.g.
// SQLJSON_GENERATE_PARAM_STYLE.
const EnvPrefix = "SQLJSON"

// File is the content of a configuration file.
type File struct {
	// Metadata is the path of the database metadata document.
	Metadata string `mapstructure:"metadata"`

	// Specs are the paths of query group documents.
	Specs []string `mapstructure:"specs"`

	Output   Output  `mapstructure:"output"`
	Generate Options `mapstructure:"generate"`
}

// Output names the directories generated files are written to. Nothing is
// written for an empty directory.
type Output struct {
	SQLDir   string `mapstructure:"sql_dir"`
	TypesDir string `mapstructure:"types_dir"`
}

// Load reads the configuration with the precedence env > config file >
// defaults. An empty path looks for one of DefaultFileNames in the working
// directory and uses the defaults alone when there is none.
//
// Returns the loaded configuration and the path of the file read, empty when
// none was.
func Load(explicitPath string) (*File, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, path, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := f.Generate.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid generate options: %w", err)
	}
	return &f, path, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultOptions()

	v.SetDefault("metadata", "")
	v.SetDefault("specs", []string{})
	v.SetDefault("output.sql_dir", "")
	v.SetDefault("output.types_dir", "")

	v.SetDefault("generate.default_schema", "")
	v.SetDefault("generate.unqualified_schemas", []string{})
	v.SetDefault("generate.property_name_style", string(defaults.PropertyNameStyle))
	v.SetDefault("generate.param_style", string(defaults.ParamStyle))
	v.SetDefault("generate.indent_spaces", defaults.IndentSpaces)
	v.SetDefault("generate.parallelism", defaults.Parallelism)
	v.SetDefault("generate.dialect", "")
}

func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}
	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}
