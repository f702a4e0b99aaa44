// Package msgcat renders user-facing text from YAML message templates.
package msgcat

import (
    "embed"
    "errors"
    "fmt"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "sync"
    "text/template"

    yaml "gopkg.in/yaml.v3"
)

const defaultFile = "messages.en.yaml"

//go:embed messages.en.yaml
var defaultFiles embed.FS

// Catalog holds flattened dot-keys ("error.illegal_move") mapped to
// text/template sources. Parsed templates are cached per key.
type Catalog struct {
    mu     sync.RWMutex
    data   map[string]string
    parsed map[string]*template.Template
}

// New loads the embedded messages and then the *.yaml overrides in dir, if
// dir is set. An override file may only replace existing keys.
func New(overrideDir string) (*Catalog, error) {
    c := &Catalog{data: make(map[string]string), parsed: make(map[string]*template.Template)}
    raw, err := fs.ReadFile(defaultFiles, defaultFile)
    if err != nil { return nil, fmt.Errorf("read embedded messages: %w", err) }
    flat, err := parseYAMLToFlat(raw)
    if err != nil { return nil, fmt.Errorf("parse embedded messages: %w", err) }
    c.data = flat

    if strings.TrimSpace(overrideDir) != "" {
        if err := c.applyDir(overrideDir); err != nil { return nil, err }
    }
    return c, nil
}

// MustDefault returns the embedded catalog and panics if it does not parse.
func MustDefault() *Catalog {
    c, err := New("")
    if err != nil { panic(err) }
    return c
}

func (c *Catalog) applyDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil { return fmt.Errorf("read message dir: %w", err) }
    files := make([]string, 0, len(entries))
    for _, e := range entries {
        ext := strings.ToLower(filepath.Ext(e.Name()))
        if !e.IsDir() && (ext == ".yaml" || ext == ".yml") { files = append(files, e.Name()) }
    }
    sort.Strings(files)

    owner := make(map[string]string)
    for _, name := range files {
        b, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil { return fmt.Errorf("read %s: %w", name, err) }
        flat, err := parseYAMLToFlat(b)
        if err != nil { return fmt.Errorf("parse %s: %w", name, err) }
        for k, v := range flat {
            if prev, ok := owner[k]; ok { return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name) }
            if _, ok := c.data[k]; !ok { return fmt.Errorf("unknown message key %q in %s", k, name) }
            owner[k] = name
            c.data[k] = v
        }
    }
    return nil
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
    var m map[string]any
    if err := yaml.Unmarshal(b, &m); err != nil { return nil, err }
    flat := make(map[string]string)
    if err := flatten(m, "", flat); err != nil { return nil, err }
    return flat, nil
}

func flatten(src any, prefix string, out map[string]string) error {
    switch v := src.(type) {
    case map[string]any:
        for k, vv := range v {
            key := k
            if prefix != "" { key = prefix + "." + k }
            if err := flatten(vv, key, out); err != nil { return err }
        }
    case string:
        if prefix == "" { return errors.New("string value without key") }
        out[prefix] = v
    case nil:
    default:
        return fmt.Errorf("unsupported value at %s: %T", prefix, v)
    }
    return nil
}

// Has reports whether key exists.
func (c *Catalog) Has(key string) bool {
    c.mu.RLock()
    defer c.mu.RUnlock()
    _, ok := c.data[strings.TrimSpace(key)]
    return ok
}

// Render executes the template stored under key. Missing keys, in the
// catalog or in data, are errors.
func (c *Catalog) Render(key string, data any) (string, error) {
    key = strings.TrimSpace(key)
    c.mu.RLock()
    t, cached := c.parsed[key]
    src, ok := c.data[key]
    c.mu.RUnlock()
    if !ok || strings.TrimSpace(src) == "" { return "", fmt.Errorf("template not found: %s", key) }

    if !cached {
        var err error
        t, err = template.New(key).Option("missingkey=error").Parse(src)
        if err != nil { return "", err }
        c.mu.Lock()
        c.parsed[key] = t
        c.mu.Unlock()
    }
    var b strings.Builder
    if err := t.Execute(&b, data); err != nil { return "", err }
    return b.String(), nil
}

// Text is Render with a fallback for callers that cannot handle an error.
func (c *Catalog) Text(key string, data any, fallback string) string {
    if c == nil { return fallback }
    s, err := c.Render(key, data)
    if err != nil { return fallback }
    return s
}
