package objcgen

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenerationOptions configures a Generator. The zero value matches the
// defaults of protoc's Objective-C backend.
type GenerationOptions struct {
	// ExpectedPrefixesPath names a file of "package = prefix" lines that
	// is loaded into the generator's prefix registry.
	ExpectedPrefixesPath string `yaml:"expected_prefixes_path"`
	// ExpectedPrefixesSuppressions lists proto file paths whose prefix
	// validation failures are ignored.
	ExpectedPrefixesSuppressions []string `yaml:"expected_prefixes_suppressions"`
	// PrefixesMustBeRegistered rejects files whose objc_class_prefix is
	// not listed in the expected-prefixes file.
	PrefixesMustBeRegistered bool `yaml:"prefixes_must_be_registered"`
	// RequirePrefixes rejects files that end up with no prefix at all.
	RequirePrefixes bool `yaml:"require_prefixes"`
	// UsePackageAsPrefix derives a prefix from the proto package when no
	// explicit or registered prefix applies.
	UsePackageAsPrefix bool `yaml:"use_package_as_prefix"`
	// PackageAsPrefixForcedPrefix overrides the derived prefix when
	// UsePackageAsPrefix is set.
	PackageAsPrefixForcedPrefix string `yaml:"package_as_prefix_forced_prefix"`
	// ProtoPackagePrefixExceptionsPath names a file listing packages, one
	// per line, exempt from UsePackageAsPrefix and RequirePrefixes.
	ProtoPackagePrefixExceptionsPath string `yaml:"proto_package_prefix_exceptions_path"`
	// HeadersUseForwardDeclarations emits @class declarations instead of
	// imports for message cross references.
	HeadersUseForwardDeclarations bool `yaml:"headers_use_forward_declarations"`
	// RuntimeImportPrefix is prepended to the runtime #import paths.
	RuntimeImportPrefix string `yaml:"runtime_import_prefix"`
}

// ParseGeneratorParameter parses a protoc-style parameter string of
// comma-separated key=value pairs into options, starting from defaults.
func ParseGeneratorParameter(parameter string) (GenerationOptions, error) {
	var opts GenerationOptions
	if parameter == "" {
		return opts, nil
	}
	for _, pair := range strings.Split(parameter, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if err := opts.set(key, value); err != nil {
			return GenerationOptions{}, err
		}
	}
	return opts, nil
}

func (o *GenerationOptions) set(key, value string) error {
	switch key {
	case "expected_prefixes_path":
		o.ExpectedPrefixesPath = value
	case "expected_prefixes_suppressions":
		for _, entry := range strings.Split(value, ";") {
			if entry != "" {
				o.ExpectedPrefixesSuppressions = append(o.ExpectedPrefixesSuppressions, entry)
			}
		}
	case "prefixes_must_be_registered":
		return setBool(&o.PrefixesMustBeRegistered, key, value)
	case "require_prefixes":
		return setBool(&o.RequirePrefixes, key, value)
	case "use_package_as_prefix":
		return setBool(&o.UsePackageAsPrefix, key, value)
	case "package_as_prefix_forced_prefix":
		o.PackageAsPrefixForcedPrefix = value
	case "proto_package_prefix_exceptions_path":
		o.ProtoPackagePrefixExceptionsPath = value
	case "headers_use_forward_declarations":
		return setBool(&o.HeadersUseForwardDeclarations, key, value)
	case "runtime_import_prefix":
		o.RuntimeImportPrefix = strings.TrimSuffix(value, "/")
	default:
		return fmt.Errorf("unknown generation option: %q", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	switch strings.ToLower(value) {
	case "yes", "true", "1":
		*dst = true
	case "no", "false", "0":
		*dst = false
	default:
		return fmt.Errorf("unknown value for %s: %q", key, value)
	}
	return nil
}

// LoadGenerationOptions reads options from a YAML file. Keys match the
// generator parameter names.
func LoadGenerationOptions(path string) (GenerationOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenerationOptions{}, err
	}
	var opts GenerationOptions
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return GenerationOptions{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}
