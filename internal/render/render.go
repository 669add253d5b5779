// Package render expands environment references in YAML config files
// before they are decoded.
package render

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"
)

// envLookup tracks the variables referenced by a config template.
type envLookup struct {
	lookup  func(string) (string, bool)
	missing map[string]struct{}
}

func (e *envLookup) required(key string) string {
	value, ok := e.lookup(key)
	if !ok {
		e.missing[key] = struct{}{}
	}
	return value
}

func (e *envLookup) optional(key, def string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return def
}

func (e *envLookup) names() []string {
	out := make([]string, 0, len(e.missing))
	for key := range e.missing {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (e *envLookup) funcs() template.FuncMap {
	return template.FuncMap{
		"env":   e.required,
		"envOr": e.optional,
		"default": func(def, value string) string {
			if value == "" {
				return def
			}
			return value
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

// File reads and renders a YAML template file.
func File(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Bytes(path, raw)
}

// Bytes renders a YAML template using the process environment.
func Bytes(name string, raw []byte) ([]byte, error) {
	return BytesWith(name, raw, os.LookupEnv)
}

// BytesWith renders a YAML template resolving variables through lookup.
// References made with env to unset variables fail the render; envOr
// substitutes its default instead.
func BytesWith(name string, raw []byte, lookup func(string) (string, bool)) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		name = "config"
	}
	env := &envLookup{lookup: lookup, missing: map[string]struct{}{}}
	tmpl, err := template.New(name).Funcs(env.funcs()).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	if missing := env.names(); len(missing) > 0 {
		return nil, fmt.Errorf("missing env vars: %s", strings.Join(missing, ", "))
	}
	return buf.Bytes(), nil
}
