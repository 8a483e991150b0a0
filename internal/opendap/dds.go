package opendap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	plainDeclRe = regexp.MustCompile(`^(\w+)\s+([\w%.]+)((?:\s*\[[^\]]+\])*)\s*$`)
	dimRe       = regexp.MustCompile(`\[\s*(\w+)\s*=\s*(\d+)\s*\]`)
	blockDeclRe = regexp.MustCompile(`(?s)^(Grid|Structure|Sequence)\s*\{(.*)\}\s*([\w%.]+)\s*$`)
)

// ParseDDS parses a DDS document's top-level "Dataset { ... } name;" body
// into a Dataset. Grid declarations retain only their Array: member as the
// primary data variable (its Maps: members describe coordinate variables
// that are already declared independently elsewhere in the document).
func ParseDDS(data []byte) (*Dataset, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, ErrEmptyDDS
	}

	open := strings.Index(text, "{")
	if !strings.HasPrefix(text, "Dataset") || open < 0 {
		return nil, ErrEmptyDDS
	}
	close, err := matchingBrace(text, open)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyDDS, err)
	}
	body := text[open+1 : close]
	name := strings.TrimSuffix(strings.TrimSpace(text[close+1:]), ";")

	decls, err := splitTopLevel(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyDDS, err)
	}
	if len(decls) == 0 {
		return nil, ErrEmptyDDS
	}

	ds := &Dataset{Name: name, Variables: map[string]*Variable{}}
	for _, decl := range decls {
		v, err := parseDecl(decl)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmptyDDS, err)
		}
		ds.Variables[v.Name] = v
	}
	return ds, nil
}

// parseDecl parses one top-level declaration, which is either a plain
// "<Type> <name>[<dim>=<n>]..." variable or a "Grid {...} name" block.
func parseDecl(decl string) (*Variable, error) {
	if m := blockDeclRe.FindStringSubmatch(decl); m != nil {
		keyword, content, name := m[1], m[2], m[3]
		return parseBlockDecl(keyword, content, name)
	}
	return parsePlainDecl(decl)
}

func parseBlockDecl(keyword, content, name string) (*Variable, error) {
	kind := SequenceType
	if keyword == "Grid" {
		kind = GridType
	}
	if kind != GridType {
		// Structure/Sequence: no primary array to surface; represent as a
		// zero-dim placeholder so callers can still see the name exists.
		return &Variable{Name: name, Kind: kind, Attributes: map[string]string{}}, nil
	}

	arrayIdx := strings.Index(content, "Array:")
	mapsIdx := strings.Index(content, "Maps:")
	if arrayIdx < 0 {
		return nil, fmt.Errorf("grid %q missing Array: section", name)
	}
	end := len(content)
	if mapsIdx > arrayIdx {
		end = mapsIdx
	}
	arraySection := strings.TrimSpace(content[arrayIdx+len("Array:") : end])
	arraySection = strings.TrimSuffix(arraySection, ";")

	v, err := parsePlainDecl(arraySection)
	if err != nil {
		return nil, fmt.Errorf("grid %q: %w", name, err)
	}
	v.Name = name
	v.Kind = GridType
	return v, nil
}

func parsePlainDecl(decl string) (*Variable, error) {
	decl = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(decl), ";"))
	m := plainDeclRe.FindStringSubmatch(decl)
	if m == nil {
		return nil, fmt.Errorf("unparseable declaration: %q", decl)
	}
	baseType, name, dimsRaw := m[1], m[2], m[3]

	dtype, err := dapTypeToDType(baseType)
	if err != nil {
		return nil, err
	}

	var dims []string
	var shape []int
	for _, dm := range dimRe.FindAllStringSubmatch(dimsRaw, -1) {
		dims = append(dims, dm[1])
		n, err := strconv.Atoi(dm[2])
		if err != nil {
			return nil, fmt.Errorf("invalid dimension size in %q: %v", decl, err)
		}
		shape = append(shape, n)
	}

	return &Variable{
		Name:       name,
		Kind:       BaseType,
		DType:      dtype,
		Dimensions: dims,
		Shape:      shape,
		Attributes: map[string]string{},
	}, nil
}

// dapTypeToDType maps a DAP2 base-type keyword to a numpy-style dtype code.
func dapTypeToDType(dapType string) (string, error) {
	switch dapType {
	case "Byte":
		return "|u1", nil
	case "Int16":
		return "<i2", nil
	case "UInt16":
		return "<u2", nil
	case "Int32":
		return "<i4", nil
	case "UInt32":
		return "<u4", nil
	case "Float32":
		return "<f4", nil
	case "Float64":
		return "<f8", nil
	case "String", "Url":
		return "|S", nil
	default:
		return "", fmt.Errorf("unsupported DAP base type: %s", dapType)
	}
}

// matchingBrace returns the index of the '}' matching the '{' at open.
func matchingBrace(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced braces")
}

// splitTopLevel splits body into ';'-terminated declarations, treating
// brace-enclosed blocks ("Grid { ... } name;") as a single declaration.
func splitTopLevel(body string) ([]string, error) {
	var decls []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced braces in declaration body")
			}
		case ';':
			if depth == 0 {
				decl := strings.TrimSpace(body[start:i])
				if decl != "" {
					decls = append(decls, decl)
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced braces in declaration body")
	}
	if tail := strings.TrimSpace(body[start:]); tail != "" {
		decls = append(decls, tail)
	}
	return decls, nil
}
