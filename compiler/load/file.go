package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/graph"
)

// Metadata is the document read by File:
//
//	spaces:
//	  social:
//	    vertices:
//	      - name: Person
//	        properties:
//	          - name: age
//	            type: INT64
//	          - name: bio
//	            type: STRING
//	            description: Short biography
type Metadata struct {
	Spaces map[string]Space `yaml:"spaces"`
}

// Space holds the vertex types of one graph space.
type Space struct {
	Vertices []graph.VertexType `yaml:"vertices"`
}

// SpaceNames returns the space names in sorted order.
func (m *Metadata) SpaceNames() []string {
	names := make([]string, 0, len(m.Spaces))
	for name := range m.Spaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseMetadata decodes a metadata document. Unknown keys are rejected.
func ParseMetadata(data []byte) (*Metadata, error) {
	m := &Metadata{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load: decode metadata: %w", err)
	}
	return m, nil
}

// MarshalMetadata encodes a metadata document.
func MarshalMetadata(m *Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// File loads metadata from a YAML document. The file is read on every Load,
// so edits are picked up by the next load.
type File struct {
	path string
}

// NewFile returns a loader reading the document at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the path of the metadata document.
func (f *File) Path() string {
	return f.path
}

// Load reads the document and returns the vertex types of space.
func (f *File) Load(_ context.Context, space string) ([]graph.VertexType, error) {
	m, err := f.Metadata()
	if err != nil {
		return nil, vertexql.NewMetadataError(space, "read", err)
	}
	s, ok := m.Spaces[space]
	if !ok {
		return nil, vertexql.NewMetadataError(space, "lookup", fmt.Errorf("space not found in %s", f.path))
	}
	return s.Vertices, nil
}

// Metadata reads and decodes the whole document.
func (f *File) Metadata() (*Metadata, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	return ParseMetadata(data)
}
