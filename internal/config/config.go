// =============================================================================
// Easy Enigma Virtual Box Builder - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the build
// configuration. A configuration names the executable to wrap, the output
// executable, and the local files to embed in each virtual folder.
//
// CONFIGURATION FILE (eevb.json):
//   {
//     "input": "app.exe",
//     "output": "app_boxed.exe",
//     "files": {
//       "delete_on_exit": false,
//       "compress": true,
//       "items": {
//         "DefaultFolder": ["data", "plugins*", "readme.txt"]
//       }
//     }
//   }
//
// FORMATS:
//   JSON is the canonical format. YAML documents with the same shape are
//   accepted when the file ends in .yaml or .yml.
//
// STRICTNESS:
//   - "input" and "output" are required and must be non-empty strings
//   - "files" and "files.items" are required objects
//   - Unknown keys are rejected at every level
//   - Folder keys accept the alias and the canonical spelling, but not both
//
// Paths are kept exactly as written; they are resolved at build time.
//
// =============================================================================

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	eevberrors "github.com/eevb-tools/eevb/internal/errors"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Configuration is one build: what to wrap, where to write it, and what to
// embed. It is immutable once loaded.
type Configuration struct {
	// InputPath is the executable to wrap. Relative paths are resolved
	// against the build's base directory.
	InputPath string `json:"input" yaml:"input"`

	// OutputPath is where the packager writes the boxed executable.
	OutputPath string `json:"output" yaml:"output"`

	// Files holds the embedding options and items.
	Files FileOptions `json:"files" yaml:"files"`
}

// FileOptions controls how the packager treats embedded files.
type FileOptions struct {
	// DeleteOnExit removes extracted files when the boxed program exits.
	// Default: false
	DeleteOnExit bool `json:"delete_on_exit" yaml:"delete_on_exit"`

	// Compress compresses embedded files.
	// Default: false
	Compress bool `json:"compress" yaml:"compress"`

	// Items maps virtual folders to the local paths embedded in them.
	Items EmbeddedItems `json:"items" yaml:"items"`
}

// EmbeddedItems maps each virtual folder to an ordered list of item paths.
// A folder that is absent has no items.
//
// An item ending in ForceDirectoryMarker keeps its directory as a node
// instead of splicing the directory's contents into the folder.
type EmbeddedItems map[Folder][]string

// ForceDirectoryMarker is the trailing character that forces a directory wrapper.
const ForceDirectoryMarker = "*"

// Get returns the items for a folder (nil when none).
func (e EmbeddedItems) Get(f Folder) []string {
	if e == nil {
		return nil
	}
	return e[f]
}

// IsEmpty reports whether no folder has items.
func (e EmbeddedItems) IsEmpty() bool {
	for _, items := range e {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// MarshalJSON writes every folder, in emission order, keyed by its alias.
func (e EmbeddedItems) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Folders() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Alias())
		if err != nil {
			return nil, err
		}
		items := e.Get(f)
		if items == nil {
			items = []string{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes every folder, in emission order, keyed by its alias.
func (e EmbeddedItems) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range Folders() {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range e.Get(f) {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		}
		if len(seq.Content) == 0 {
			seq.Style = yaml.FlowStyle
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Alias()},
			seq,
		)
	}
	return node, nil
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadFile reads a configuration file, choosing the decoder by extension.
//
// RETURNS:
//   - The parsed configuration.
//   - A ConfigNotFound error if the file does not exist.
//   - A SchemaError if the content does not match the schema.
func LoadFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eevberrors.NewConfigNotFound(path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// IsConfigFile reports whether path has a recognized configuration extension.
func IsConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Parse decodes a JSON configuration document.
func Parse(data []byte) (*Configuration, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eevberrors.NewSchemaErrorWithCause("configuration must be a JSON object", err)
	}
	return decodeConfiguration(raw)
}

// ParseYAML decodes a YAML configuration document. The document is checked
// by the same rules as JSON.
func ParseYAML(data []byte) (*Configuration, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eevberrors.NewSchemaErrorWithCause("invalid YAML", err)
	}

	asJSON, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, eevberrors.NewSchemaErrorWithCause("unsupported YAML value", err)
	}
	return Parse(asJSON)
}

// normalizeYAML converts non-string-keyed maps so the tree can be re-encoded as JSON.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			t[k] = normalizeYAML(child)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, child := range t {
			m[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return m
	case []interface{}:
		for i, child := range t {
			t[i] = normalizeYAML(child)
		}
		return t
	default:
		return v
	}
}

// =============================================================================
// SCHEMA DECODING
// =============================================================================

// fields is one JSON object being consumed key by key.
type fields struct {
	path string
	raw  map[string]json.RawMessage
}

// take removes and returns the value stored under any of names. Supplying
// more than one spelling of the same field is an error.
func (f *fields) take(names ...string) (json.RawMessage, bool, error) {
	var (
		found   json.RawMessage
		foundAs string
	)
	for _, name := range names {
		value, ok := f.raw[name]
		if !ok {
			continue
		}
		if foundAs != "" {
			return nil, false, eevberrors.NewSchemaError("%s: %q and %q name the same field", f.path, foundAs, name)
		}
		found, foundAs = value, name
		delete(f.raw, name)
	}
	return found, foundAs != "", nil
}

// rest fails if any key was not consumed.
func (f *fields) rest() error {
	if len(f.raw) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f.raw))
	for k := range f.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return eevberrors.NewSchemaError("%s: unknown field(s) %s", f.path, strings.Join(quoteAll(keys), ", "))
}

func (f *fields) field(name string) string {
	if f.path == "" {
		return name
	}
	return f.path + "." + name
}

func decodeConfiguration(raw map[string]json.RawMessage) (*Configuration, error) {
	obj := &fields{path: "", raw: raw}
	cfg := &Configuration{}

	var err error
	if cfg.InputPath, err = requiredString(obj, "input", "input", "input_path"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = requiredString(obj, "output", "output", "output_path"); err != nil {
		return nil, err
	}

	filesRaw, ok, err := obj.take("files")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, eevberrors.NewSchemaError("missing required field \"files\"")
	}
	if cfg.Files, err = decodeFileOptions(filesRaw); err != nil {
		return nil, err
	}

	if err := obj.rest(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFileOptions(data json.RawMessage) (FileOptions, error) {
	var opts FileOptions

	raw, err := decodeObject("files", data)
	if err != nil {
		return opts, err
	}
	obj := &fields{path: "files", raw: raw}

	if opts.DeleteOnExit, err = optionalBool(obj, "delete_on_exit"); err != nil {
		return opts, err
	}
	if opts.Compress, err = optionalBool(obj, "compress"); err != nil {
		return opts, err
	}

	itemsRaw, ok, err := obj.take("items")
	if err != nil {
		return opts, err
	}
	if !ok {
		return opts, eevberrors.NewSchemaError("missing required field \"files.items\"")
	}
	if opts.Items, err = decodeItems(itemsRaw); err != nil {
		return opts, err
	}

	return opts, obj.rest()
}

func decodeItems(data json.RawMessage) (EmbeddedItems, error) {
	raw, err := decodeObject("files.items", data)
	if err != nil {
		return nil, err
	}
	obj := &fields{path: "files.items", raw: raw}

	items := make(EmbeddedItems)
	for _, folder := range Folders() {
		value, ok, err := obj.take(folder.Alias(), folder.Canonical())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		label := obj.field(folder.Alias())
		if isNull(value) {
			return nil, eevberrors.NewSchemaError("%s must be a list of strings, got null", label)
		}
		var elems []*string
		if err := json.Unmarshal(value, &elems); err != nil {
			return nil, eevberrors.NewSchemaErrorWithCause(
				fmt.Sprintf("%s must be a list of strings", label), err)
		}
		list := make([]string, 0, len(elems))
		for i, elem := range elems {
			if elem == nil {
				return nil, eevberrors.NewSchemaError("%s[%d] must be a string, got null", label, i)
			}
			list = append(list, *elem)
		}
		if len(list) > 0 {
			items[folder] = list
		}
	}

	if err := obj.rest(); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeObject(path string, data json.RawMessage) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eevberrors.NewSchemaErrorWithCause(fmt.Sprintf("%s must be an object", path), err)
	}
	if raw == nil {
		return nil, eevberrors.NewSchemaError("%s must be an object, got null", path)
	}
	return raw, nil
}

func requiredString(obj *fields, label string, names ...string) (string, error) {
	value, ok, err := obj.take(names...)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", eevberrors.NewSchemaError("missing required field %q", obj.field(label))
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", eevberrors.NewSchemaErrorWithCause(fmt.Sprintf("%s must be a string", obj.field(label)), err)
	}
	if strings.TrimSpace(s) == "" {
		return "", eevberrors.NewSchemaError("%s must not be empty", obj.field(label))
	}
	return s, nil
}

func optionalBool(obj *fields, name string) (bool, error) {
	value, ok, err := obj.take(name)
	if err != nil || !ok {
		return false, err
	}
	if isNull(value) {
		return false, eevberrors.NewSchemaError("%s must be a boolean, got null", obj.field(name))
	}
	var b bool
	if err := json.Unmarshal(value, &b); err != nil {
		return false, eevberrors.NewSchemaErrorWithCause(fmt.Sprintf("%s must be a boolean", obj.field(name)), err)
	}
	return b, nil
}

// isNull reports whether a raw value is the JSON literal null, which
// json.Unmarshal would otherwise accept as a no-op.
func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func quoteAll(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%q", k)
	}
	return out
}

// =============================================================================
// TEMPLATE
// =============================================================================

// Template returns the configuration written by "init".
func Template() *Configuration {
	return &Configuration{
		InputPath:  "path/to/your/input/file.exe",
		OutputPath: "path/to/your/output/file.exe",
		Files: FileOptions{
			Items: EmbeddedItems{
				FolderDefault: {"folder/to/include", "or/file/to/include"},
			},
		},
	}
}

// MarshalIndentJSON renders a configuration with two-space indentation.
func MarshalIndentJSON(cfg *Configuration) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// MarshalYAML renders a configuration as YAML.
func MarshalYAML(cfg *Configuration) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal renders cfg in the format implied by path's extension.
func Marshal(cfg *Configuration, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return MarshalYAML(cfg)
	default:
		return MarshalIndentJSON(cfg)
	}
}
