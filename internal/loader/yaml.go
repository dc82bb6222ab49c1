package loader

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// yamlFile is the list form of a YAML statement file.
type yamlFile struct {
	Statements []Statement `yaml:"statements"`
}

// ParseYAML decodes a YAML statement file: either a single statement
// document or a mapping with a statements list.
//
// Decoding is strict: unknown keys are rejected so typos such as "wehre"
// do not silently drop a clause.
func ParseYAML(data []byte) ([]Statement, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlError(err)
	}
	if len(root.Content) == 0 {
		return nil, loadErrorf(ErrCodeEmpty, Position{}, "no statements found")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, loadErrorf(ErrCodeParse, Position{doc.Line, doc.Column}, "expected a statement mapping")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if hasKey(doc, "statements") {
		var file yamlFile
		if err := decoder.Decode(&file); err != nil {
			return nil, yamlError(err)
		}
		if len(file.Statements) == 0 {
			return nil, loadErrorf(ErrCodeEmpty, Position{doc.Line, doc.Column}, "statements list is empty")
		}
		positions := sequencePositions(doc, "statements")
		for i := range file.Statements {
			if i < len(positions) {
				file.Statements[i].Pos = positions[i]
			}
		}
		return file.Statements, nil
	}

	var stmt Statement
	if err := decoder.Decode(&stmt); err != nil {
		return nil, yamlError(err)
	}
	stmt.Pos = Position{doc.Line, doc.Column}
	return []Statement{stmt}, nil
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

// sequencePositions returns the position of every item of the sequence
// stored under key.
func sequencePositions(mapping *yaml.Node, key string) []Position {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		seq := mapping.Content[i+1]
		positions := make([]Position, 0, len(seq.Content))
		for _, item := range seq.Content {
			positions = append(positions, Position{item.Line, item.Column})
		}
		return positions
	}
	return nil
}

// yamlError keeps load errors raised by custom unmarshalers and classifies
// everything else as a parse failure.
func yamlError(err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return loadErrorf(ErrCodeField, Position{}, "%v", err)
	}
	return loadErrorf(ErrCodeParse, Position{}, "%v", err)
}
