package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Settings holds optional per-user defaults for flag values, loaded from the
// config file before argument parsing. Empty fields defer to the built-in
// defaults.
type Settings struct {
	Org             string `yaml:"org,omitempty"`
	Channel         string `yaml:"channel,omitempty" validate:"omitempty,oneof=stable beta"`
	OutputDir       string `yaml:"output_dir,omitempty"`
	Template        string `yaml:"template,omitempty" validate:"omitempty,oneof=app plugin"`
	IOSLanguage     string `yaml:"ios_language,omitempty" validate:"omitempty,oneof=swift objc"`
	AndroidLanguage string `yaml:"android_language,omitempty" validate:"omitempty,oneof=kotlin java"`
	UpdateMode      string `yaml:"flutter_update,omitempty" validate:"omitempty,oneof=reset reclone skip"`
	SDKRoot         string `yaml:"sdk_root,omitempty"`
	Verbose         bool   `yaml:"verbose,omitempty"`
}

// LoadSettings reads the defaults file at path, validates it, and returns the
// resulting model. A missing file is not an error; it yields zero Settings.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, kiterrors.NewConfigurationError("settings", fmt.Sprintf("%s: %v", path, err), err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, kiterrors.NewConfigurationError("settings", parseMessage(path, err), err)
	}

	if err := validatorInstance().Struct(&settings); err != nil {
		return nil, convertValidationError(err)
	}

	return &settings, nil
}

func parseMessage(path string, err error) string {
	if line := extractLine(err); line > 0 {
		return fmt.Sprintf("%s:%d: %v", path, line, err)
	}
	return fmt.Sprintf("%s: %v", path, err)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
