package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks every descriptor invariant, reporting the first violation.
func Validate(cfg *Config) error {
	if cfg == nil {
		return kiterrors.NewConfigurationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	// Native language choices only matter for plugin templates; app templates
	// never consult them.
	if cfg.Template == TemplatePlugin {
		if !containsString(validIOSLanguages, cfg.IOSLanguage) {
			return kiterrors.NewConfigurationError("ios_language", fmt.Sprintf("invalid ios language: %s", cfg.IOSLanguage), nil)
		}
		if !containsString(validAndroidLanguages, cfg.AndroidLanguage) {
			return kiterrors.NewConfigurationError("android_language", fmt.Sprintf("invalid android language: %s", cfg.AndroidLanguage), nil)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	ves, ok := err.(validator.ValidationErrors)
	if !ok || len(ves) == 0 {
		return kiterrors.NewConfigurationError("config", err.Error(), err)
	}

	ve := ves[0]
	field := ve.StructField()
	switch {
	case field == "ProjectName":
		return kiterrors.NewConfigurationError("project_name", "project name required", err)
	case strings.HasPrefix(field, "Platforms"):
		if ve.Tag() == "oneof" {
			return kiterrors.NewConfigurationError("platforms", fmt.Sprintf("invalid platform: %v", ve.Value()), err)
		}
		return kiterrors.NewConfigurationError("platforms", "at least one platform required", err)
	case field == "Channel":
		return fieldError("channel", "channel", ve, err)
	case field == "Template":
		return fieldError("template", "template", ve, err)
	case field == "UpdateMode":
		return fieldError("flutter_update", "update mode", ve, err)
	case field == "IOSLanguage":
		return fieldError("ios_language", "ios language", ve, err)
	case field == "AndroidLanguage":
		return fieldError("android_language", "android language", ve, err)
	}

	name := yamlishFieldName(ve)
	return kiterrors.NewConfigurationError(name, fmt.Sprintf("%s failed validation for tag '%s'", name, ve.Tag()), err)
}

func fieldError(name, label string, ve validator.FieldError, err error) error {
	if ve.Tag() == "required" {
		return kiterrors.NewConfigurationError(name, fmt.Sprintf("%s required", label), err)
	}
	return kiterrors.NewConfigurationError(name, fmt.Sprintf("invalid %s: %v", label, ve.Value()), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
