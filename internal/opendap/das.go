package opendap

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDAS parses a DAS "Attributes { <var> { <Type> <name> <value>; ... } }"
// document into a map of variable name to attribute name/raw-value pairs.
// Malformed input yields an empty map rather than an error, matching the
// ODD/descxml parsers' degrade-on-failure policy.
func ParseDAS(data []byte) map[string]map[string]string {
	result := map[string]map[string]string{}

	text := strings.TrimSpace(string(data))
	open := strings.Index(text, "{")
	if !strings.HasPrefix(text, "Attributes") || open < 0 {
		return result
	}
	close, err := matchingBrace(text, open)
	if err != nil {
		return result
	}
	body := text[open+1 : close]

	blocks, err := splitAttributeBlocks(body)
	if err != nil {
		return result
	}
	for name, content := range blocks {
		attrs := map[string]string{}
		lines, err := splitTopLevel(content)
		if err != nil {
			continue
		}
		for _, line := range lines {
			attrName, value, ok := parseAttrLine(line)
			if ok {
				attrs[attrName] = value
			}
		}
		result[name] = attrs
	}
	return result
}

// splitAttributeBlocks splits "<name> { ... } <name2> { ... } ..." into a
// map of variable name to its brace-enclosed content.
func splitAttributeBlocks(body string) (map[string]string, error) {
	blocks := map[string]string{}
	i := 0
	for i < len(body) {
		for i < len(body) && (body[i] == ' ' || body[i] == '\n' || body[i] == '\t' || body[i] == '\r') {
			i++
		}
		if i >= len(body) {
			break
		}
		nameStart := i
		for i < len(body) && body[i] != '{' {
			i++
		}
		if i >= len(body) {
			break
		}
		name := strings.TrimSpace(body[nameStart:i])
		close, err := matchingBrace(body, i)
		if err != nil {
			return nil, err
		}
		blocks[name] = body[i+1 : close]
		i = close + 1
	}
	return blocks, nil
}

// parseAttrLine parses "<Type> <name> <value[, value...]>" into its name
// and raw (un-type-converted) value text.
func parseAttrLine(line string) (name, value string, ok bool) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) < 3 {
		return "", "", false
	}
	return fields[1], strings.TrimSpace(fields[2]), true
}

// ChunkSizesFromAttr parses a DAS "Int32 _ChunkSizes 1, 17, 90, 180" raw
// value into its integer components.
func ChunkSizesFromAttr(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid chunk size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
