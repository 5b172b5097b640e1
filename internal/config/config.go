// Package config loads daemon options from CLI flags, environment and a TOML
// file, and watches files for edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/multistrip/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag when looking up overrides.
const EnvPrefix = "MULTISTRIP_"

// LoadConfig loads configuration with proper precedence: CLI args > env vars > config file.
// If cmd is provided, flags explicitly set via CLI will not be overwritten.
// opts must point to a flat struct; a string field named Config holds the
// TOML file path. A missing file is not an error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changed := changedFlags(cmd)
	skip := func(f reflect.StructField) bool {
		return changed[fieldNameToFlag(f.Name)]
	}

	if field := v.FieldByName("Config"); field.IsValid() && field.Kind() == reflect.String {
		doc, err := readTOML(field.String())
		if err != nil {
			return err
		}
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if skip(f) {
				continue
			}
			if path := f.Tag.Get("toml"); path != "" {
				if value := getNestedValue(doc, path); value != nil {
					setFieldValue(v.Field(i), value)
				}
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		f := t.Field(i)
		if skip(f) {
			continue
		}
		if key := f.Tag.Get("env"); key != "" {
			if value := os.Getenv(EnvPrefix + key); value != "" {
				setFieldValueFromString(v.Field(i), value)
			}
		}
	}

	return nil
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed[f.Name] = true
		}
	})
	return changed
}

// readTOML parses path into a generic document. An empty path or missing
// file yields nil.
func readTOML(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return doc, nil
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "LoggingLevel" -> "logging-level", "Port" -> "port".
func fieldNameToFlag(fieldName string) string {
	var result []rune
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '-')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue retrieves a value from nested map using dot notation.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

// setFieldValue sets a field from a decoded TOML value. Mismatched types are ignored.
func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		switch i := value.(type) {
		case int64:
			field.SetInt(i)
		case int:
			field.SetInt(int64(i))
		}
	case reflect.Slice:
		arr, ok := value.([]any)
		if !ok {
			return
		}
		switch field.Type().Elem().Kind() {
		case reflect.String:
			out := make([]string, 0, len(arr))
			for _, e := range arr {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			field.Set(reflect.ValueOf(out))
		case reflect.Int:
			out := make([]int, 0, len(arr))
			for _, e := range arr {
				if i, ok := e.(int64); ok {
					out = append(out, int(i))
				}
			}
			field.Set(reflect.ValueOf(out))
		}
	}
}

// setFieldValueFromString sets a field from an env value. Slices are comma-separated.
func setFieldValueFromString(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Slice:
		parts := strings.Split(value, ",")
		switch field.Type().Elem().Kind() {
		case reflect.String:
			out := make([]string, len(parts))
			for i, part := range parts {
				out[i] = strings.TrimSpace(part)
			}
			field.Set(reflect.ValueOf(out))
		case reflect.Int:
			out := make([]int, 0, len(parts))
			for _, part := range parts {
				if i, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
					out = append(out, i)
				}
			}
			field.Set(reflect.ValueOf(out))
		}
	}
}

// LoadLoggingConfig reads the [logging] table of a TOML config file.
// Keys other than level and format are per-module levels.
// Returns defaults if the file doesn't exist or can't be parsed.
func LoadLoggingConfig(configPath string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	doc, err := readTOML(configPath)
	if err != nil || doc == nil {
		return cfg
	}
	table, ok := doc["logging"].(map[string]any)
	if !ok {
		return cfg
	}

	for key, raw := range table {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		default:
			cfg.Modules[key] = value
		}
	}

	return cfg
}
