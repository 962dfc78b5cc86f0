package versionbumper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ZenodoFileName is the Zenodo deposit metadata file at the repository root.
const ZenodoFileName = ".zenodo.json"

const versionSectionMarker = "\n\n## Version "

// ZenodoRelease carries what UpdateZenodo needs to describe a release.
type ZenodoRelease struct {
	Version   SemanticVersion
	TagPrefix string
	// RepoPath is the "owner/repo" path on GitHub.
	RepoPath string
	// Changelog is the released section body; may be empty.
	Changelog string
	// BaseDescription replaces the project blurb. When empty, the existing
	// description up to its previous version section is kept.
	BaseDescription string
}

// ReleaseURL is the GitHub release page for the tag.
func (r ZenodoRelease) ReleaseURL() string {
	return fmt.Sprintf("https://github.com/%s/releases/tag/%s", r.RepoPath, r.Version.Tag(r.TagPrefix))
}

// Description builds the deposit description for the release.
func (r ZenodoRelease) Description(base string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "\n"))
	if r.Changelog != "" {
		fmt.Fprintf(&b, "%s%s Changes\n\n%s", versionSectionMarker, r.Version, r.Changelog)
	} else {
		fmt.Fprintf(&b, "%s%s\n\nSee the GitHub release page for detailed changes.", versionSectionMarker, r.Version)
	}
	fmt.Fprintf(&b, "\n\n## Download\n\nPre-compiled binaries for this version are available at: %s", r.ReleaseURL())
	b.WriteString("\n\nThis Zenodo archive contains the source code for citation and archival purposes.")
	return b.String()
}

// RepoPathFromRemote extracts "owner/repo" from an SSH or HTTPS remote URL.
func RepoPathFromRemote(remote string) string {
	remote = strings.TrimSpace(remote)
	var p string
	if strings.HasPrefix(remote, "git@") {
		p = remote[strings.LastIndex(remote, ":")+1:]
	} else {
		parts := strings.Split(strings.TrimRight(remote, "/"), "/")
		if len(parts) >= 2 {
			parts = parts[len(parts)-2:]
		}
		p = strings.Join(parts, "/")
	}
	return strings.TrimSuffix(p, ".git")
}

// UpdateZenodo rewrites the description field of the Zenodo metadata at path,
// keeping every other field and the key order. It returns the release URL.
func UpdateZenodo(path string, rel ZenodoRelease) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &FileNotFoundError{Path: path}
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := decodeOrderedObject(data)
	if err != nil {
		return "", fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	base := rel.BaseDescription
	if base == "" {
		var current string
		if raw, ok := doc.values["description"]; ok {
			_ = json.Unmarshal(raw, &current)
		}
		base, _, _ = strings.Cut(current, versionSectionMarker)
	}

	desc, err := marshalString(rel.Description(base))
	if err != nil {
		return "", err
	}
	doc.set("description", desc)

	out, err := doc.encode()
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := writeFilePreservingMode(path, out); err != nil {
		return "", err
	}
	return rel.ReleaseURL(), nil
}

// orderedObject is a top-level JSON object that remembers its key order.
type orderedObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func (o *orderedObject) set(key string, value json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func decodeOrderedObject(data []byte) (*orderedObject, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("top-level value is not an object")
	}

	doc := &orderedObject{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		doc.set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return doc, nil
}

func (o *orderedObject) encode() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		compact.Write(kb)
		compact.WriteByte(':')
		compact.Write(o.values[k])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// marshalString encodes s as a JSON string without HTML escaping, so
// characters like & and < stay readable in the metadata file.
func marshalString(s string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
