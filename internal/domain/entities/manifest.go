package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// ManifestFileName is the canonical npm manifest file name.
const ManifestFileName = "package.json"

// defaultIndent is used when a manifest has no indented line to detect from.
const defaultIndent = "  "

// Manifest is a parsed package.json that can be serialized back without
// disturbing the original bytes: string edits patch their recorded source
// spans in place, so a version rewrite diffs as exactly one changed value
// even in compact or hand-formatted files.
type Manifest struct {
	Path string // absolute path of the manifest file
	Dir  string // directory containing the manifest

	root            *jsonObject
	source          []byte
	indent          string
	trailingNewline bool

	edits  map[int]spanEdit // pending string replacements keyed by span start
	reflow bool             // a structural change forces a full re-encode
}

// spanEdit replaces the source bytes of one string value.
type spanEdit struct {
	span  memberSpan
	value string
}

// ParseManifest parses manifest bytes while recording their formatting and
// the byte span of every string member, so later edits can patch the
// source instead of re-encoding it.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := decodeValue(decoder, data)
	if err != nil {
		return nil, NewManifestParseError(path, err)
	}
	root, ok := value.(*jsonObject)
	if !ok {
		return nil, NewManifestParseError(path, errors.New("top-level value is not an object"))
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, NewManifestParseError(path, errors.New("trailing content after top-level object"))
	}

	return &Manifest{
		Path:            path,
		Dir:             filepath.Dir(path),
		root:            root,
		source:          append([]byte(nil), data...),
		indent:          detectIndent(data),
		trailingNewline: bytes.HasSuffix(data, []byte("\n")),
	}, nil
}

// detectIndent returns the indent unit of the first indented line: a tab
// when the line starts with one, otherwise the run of leading spaces.
func detectIndent(data []byte) string {
	for _, line := range bytes.Split(data, []byte("\n")) {
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) == 0 || len(trimmed) == len(line) {
			continue
		}
		if line[0] == '\t' {
			return "\t"
		}
		return strings.Repeat(" ", len(line)-len(trimmed))
	}
	return defaultIndent
}

// Name returns the package name, empty when the manifest declares none.
func (m *Manifest) Name() string { return m.stringField("name") }

// Version returns the declared version string, empty when absent.
func (m *Manifest) Version() string { return m.stringField("version") }

// SetVersion replaces the manifest's version field.
func (m *Manifest) SetVersion(version Version) {
	m.setString(m.root, "version", version.String())
}

// Private reports whether the manifest is marked "private": true.
func (m *Manifest) Private() bool {
	value, ok := m.root.get("private")
	if !ok {
		return false
	}
	private, _ := value.(bool)
	return private
}

// PackageManager returns the "packageManager" field, e.g. "pnpm@8.15.0".
func (m *Manifest) PackageManager() string { return m.stringField("packageManager") }

// WorkspaceGlobs returns the "workspaces" globs. Both the plain array form
// and the object form with a "packages" array are supported.
func (m *Manifest) WorkspaceGlobs() []string {
	value, ok := m.root.get("workspaces")
	if !ok {
		return nil
	}
	if nested, ok := value.(*jsonObject); ok {
		value, ok = nested.get("packages")
		if !ok {
			return nil
		}
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	globs := make([]string, 0, len(items))
	for _, item := range items {
		if glob, ok := item.(string); ok {
			globs = append(globs, glob)
		}
	}
	return globs
}

// Dependencies returns the name→spec entries of one dependency map.
func (m *Manifest) Dependencies(kind DependencyKind) map[string]string {
	section, ok := m.section(kind)
	if !ok {
		return nil
	}
	deps := make(map[string]string, len(section.keys))
	for _, name := range section.keys {
		if spec, ok := section.values[name].(string); ok {
			deps[name] = spec
		}
	}
	return deps
}

// DependencySpec returns the declared spec for one dependency.
func (m *Manifest) DependencySpec(kind DependencyKind, name string) (string, bool) {
	section, ok := m.section(kind)
	if !ok {
		return "", false
	}
	value, ok := section.get(name)
	if !ok {
		return "", false
	}
	spec, ok := value.(string)
	return spec, ok
}

// UpdateDependency rewrites a dependency's version payload while keeping
// its prefix. It reports whether the manifest changed.
func (m *Manifest) UpdateDependency(kind DependencyKind, name string, newVersion Version) bool {
	section, ok := m.section(kind)
	if !ok {
		return false
	}
	value, ok := section.get(name)
	if !ok {
		return false
	}
	oldSpec, ok := value.(string)
	if !ok {
		return false
	}
	newSpec := RewriteSpec(oldSpec, newVersion)
	if newSpec == oldSpec {
		return false
	}
	m.setString(section, name, newSpec)
	return true
}

// SetDependencySpec overwrites a dependency spec verbatim.
func (m *Manifest) SetDependencySpec(kind DependencyKind, name, spec string) {
	section, ok := m.section(kind)
	if !ok {
		return
	}
	if _, exists := section.get(name); !exists {
		return
	}
	m.setString(section, name, spec)
}

// setString routes string mutations so Marshal can patch the recorded
// source span instead of re-encoding the document. A member without a span
// (added, or originally non-string) forces the re-encode fallback.
func (m *Manifest) setString(object *jsonObject, key, value string) {
	current, exists := object.get(key)
	if existing, ok := current.(string); exists && ok && existing == value {
		return
	}
	object.set(key, value)

	span, ok := object.spans[key]
	if !ok || !exists {
		m.reflow = true
		return
	}
	if m.edits == nil {
		m.edits = make(map[int]spanEdit)
	}
	m.edits[span.start] = spanEdit{span: span, value: value}
}

// Scripts returns the "scripts" map.
func (m *Manifest) Scripts() map[string]string {
	value, ok := m.root.get("scripts")
	if !ok {
		return nil
	}
	section, ok := value.(*jsonObject)
	if !ok {
		return nil
	}
	scripts := make(map[string]string, len(section.keys))
	for _, key := range section.keys {
		if script, ok := section.values[key].(string); ok {
			scripts[key] = script
		}
	}
	return scripts
}

// HasField reports whether a top-level field is present.
func (m *Manifest) HasField(name string) bool {
	_, ok := m.root.get(name)
	return ok
}

// Indent exposes the detected indent unit.
func (m *Manifest) Indent() string { return m.indent }

// Marshal serializes the manifest. Unless a structural change forces a
// re-encode, the original bytes come back with only the edited value spans
// replaced, so untouched lines stay byte-identical.
func (m *Manifest) Marshal() ([]byte, error) {
	if !m.reflow {
		return m.patchSource()
	}
	var buf bytes.Buffer
	if err := encodeValue(&buf, m.root, m.indent, 0); err != nil {
		return nil, fmt.Errorf("failed to serialize manifest %q: %w", m.Path, err)
	}
	if m.trailingNewline {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// patchSource splices the pending edits into the original bytes. With no
// edits the source comes back verbatim.
func (m *Manifest) patchSource() ([]byte, error) {
	if len(m.edits) == 0 {
		return append([]byte(nil), m.source...), nil
	}
	edits := make([]spanEdit, 0, len(m.edits))
	for _, edit := range m.edits {
		edits = append(edits, edit)
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].span.start < edits[j].span.start })

	var buf bytes.Buffer
	last := 0
	for _, edit := range edits {
		buf.Write(m.source[last:edit.span.start])
		if err := encodeScalar(&buf, edit.value); err != nil {
			return nil, fmt.Errorf("failed to serialize manifest %q: %w", m.Path, err)
		}
		last = edit.span.end
	}
	buf.Write(m.source[last:])
	return buf.Bytes(), nil
}

func (m *Manifest) section(kind DependencyKind) (*jsonObject, bool) {
	value, ok := m.root.get(string(kind))
	if !ok {
		return nil, false
	}
	section, ok := value.(*jsonObject)
	return section, ok
}

func (m *Manifest) stringField(name string) string {
	value, ok := m.root.get(name)
	if !ok {
		return ""
	}
	field, _ := value.(string)
	return field
}

// memberSpan is the byte range of a string value in the source, opening
// quote through closing quote.
type memberSpan struct {
	start int
	end   int
}

// jsonObject keeps member order alongside the usual key→value map, plus
// the source spans of its string values.
type jsonObject struct {
	keys   []string
	values map[string]any
	spans  map[string]memberSpan
}

func newJSONObject() *jsonObject {
	return &jsonObject{
		values: make(map[string]any),
		spans:  make(map[string]memberSpan),
	}
}

func (o *jsonObject) get(key string) (any, bool) {
	value, ok := o.values[key]
	return value, ok
}

func (o *jsonObject) set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func decodeValue(decoder *json.Decoder, data []byte) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}
	switch delim {
	case '{':
		return decodeObject(decoder, data)
	case '[':
		return decodeArray(decoder, data)
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func decodeObject(decoder *json.Decoder, data []byte) (*jsonObject, error) {
	object := newJSONObject()
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", token)
		}
		// Between the key and its value only the colon and whitespace occur,
		// so the next quote opens the value when the value is a string.
		afterKey := decoder.InputOffset()
		value, err := decodeValue(decoder, data)
		if err != nil {
			return nil, err
		}
		if _, isString := value.(string); isString {
			if start := nextQuote(data, afterKey); start >= 0 {
				object.spans[key] = memberSpan{start: start, end: int(decoder.InputOffset())}
			}
		}
		object.set(key, value)
	}
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return object, nil
}

func decodeArray(decoder *json.Decoder, data []byte) ([]any, error) {
	items := []any{}
	for decoder.More() {
		value, err := decodeValue(decoder, data)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return items, nil
}

// nextQuote returns the offset of the first double quote at or after from.
func nextQuote(data []byte, from int64) int {
	for i := int(from); i < len(data); i++ {
		if data[i] == '"' {
			return i
		}
	}
	return -1
}

func encodeValue(buf *bytes.Buffer, value any, indent string, depth int) error {
	switch typed := value.(type) {
	case *jsonObject:
		return encodeObject(buf, typed, indent, depth)
	case []any:
		return encodeArray(buf, typed, indent, depth)
	default:
		return encodeScalar(buf, typed)
	}
}

func encodeObject(buf *bytes.Buffer, object *jsonObject, indent string, depth int) error {
	if len(object.keys) == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteString("{\n")
	for i, key := range object.keys {
		writeIndent(buf, indent, depth+1)
		if err := encodeScalar(buf, key); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := encodeValue(buf, object.values[key], indent, depth+1); err != nil {
			return err
		}
		if i < len(object.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, indent, depth)
	buf.WriteByte('}')
	return nil
}

func encodeArray(buf *bytes.Buffer, items []any, indent string, depth int) error {
	if len(items) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteString("[\n")
	for i, item := range items {
		writeIndent(buf, indent, depth+1)
		if err := encodeValue(buf, item, indent, depth+1); err != nil {
			return err
		}
		if i < len(items)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, indent, depth)
	buf.WriteByte(']')
	return nil
}

// encodeScalar marshals leaves without HTML escaping, matching how npm
// writes URLs in manifests.
func encodeScalar(buf *bytes.Buffer, value any) error {
	var scratch bytes.Buffer
	encoder := json.NewEncoder(&scratch)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(scratch.Bytes(), "\n"))
	return nil
}

func writeIndent(buf *bytes.Buffer, indent string, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
}
