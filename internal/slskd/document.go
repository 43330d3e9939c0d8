package slskd

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// The slskd options document is edited as a yaml.Node tree rather than
// unmarshaled into a struct. Only soulseek.listen_port is touched; every
// other field, the key ordering, and comments survive the round trip.

func parseDocument(src string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if doc.Kind == 0 {
		// Empty document; synthesize an empty mapping so the port can
		// still be written.
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top-level document is not a mapping", ErrConfig)
	}
	return &doc, nil
}

func renderDocument(doc *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding options document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding options document: %w", err)
	}
	return buf.String(), nil
}

// mappingValue returns the value node for key within a mapping node
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// documentListenPort extracts soulseek.listen_port from a parsed document
func documentListenPort(doc *yaml.Node) (int, error) {
	root := doc.Content[0]

	soulseek := mappingValue(root, "soulseek")
	if soulseek == nil {
		return 0, fmt.Errorf("%w: soulseek section missing", ErrConfig)
	}
	if soulseek.Kind != yaml.MappingNode {
		return 0, fmt.Errorf("%w: soulseek section is not a mapping", ErrConfig)
	}

	node := mappingValue(soulseek, "listen_port")
	if node == nil {
		return 0, fmt.Errorf("%w: soulseek.listen_port missing", ErrConfig)
	}
	port, err := strconv.Atoi(node.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: soulseek.listen_port is not an integer: %q", ErrConfig, node.Value)
	}
	return port, nil
}

// setDocumentListenPort sets soulseek.listen_port in place, creating the
// soulseek section when absent
func setDocumentListenPort(doc *yaml.Node, port int) error {
	root := doc.Content[0]

	soulseek := mappingValue(root, "soulseek")
	if soulseek == nil {
		soulseek = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "soulseek"},
			soulseek,
		)
	}
	if soulseek.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: soulseek section is not a mapping", ErrConfig)
	}

	value := strconv.Itoa(port)
	if node := mappingValue(soulseek, "listen_port"); node != nil {
		node.Kind = yaml.ScalarNode
		node.Tag = "!!int"
		node.Value = value
		node.Style = 0
		return nil
	}
	soulseek.Content = append(soulseek.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "listen_port"},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value},
	)
	return nil
}
