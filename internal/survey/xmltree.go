package survey

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// xmlNode is a generic element tree. Survey XML dialects vary too much
// between tool versions for fixed struct mappings, so extractors walk the
// tree by local element name and ignore namespaces.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

// parseXMLFile decodes the whole document. Encodings other than UTF-8 are
// honoured through the XML declaration (Kismet writes ISO-8859-1).
func parseXMLFile(path string) (*xmlNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	dec.CharsetReader = charset.NewReaderLabel

	var root xmlNode
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &root, nil
}

// descendants returns every element below n named local, in document order.
func (n *xmlNode) descendants(local string) []*xmlNode {
	var out []*xmlNode
	var walk func(*xmlNode)
	walk = func(node *xmlNode) {
		for i := range node.Children {
			child := &node.Children[i]
			if child.XMLName.Local == local {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// find returns the first descendant matching the first name whose direct
// children continue the path, e.g. find("SSID", "essid").
func (n *xmlNode) find(path ...string) *xmlNode {
	if len(path) == 0 {
		return nil
	}
	for _, candidate := range n.descendants(path[0]) {
		if node := candidate.childPath(path[1:]); node != nil {
			return node
		}
	}
	return nil
}

func (n *xmlNode) childPath(path []string) *xmlNode {
	if len(path) == 0 {
		return n
	}
	for i := range n.Children {
		if n.Children[i].XMLName.Local == path[0] {
			if node := n.Children[i].childPath(path[1:]); node != nil {
				return node
			}
		}
	}
	return nil
}

func (n *xmlNode) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// textOf returns the trimmed text of the node found at path, or "".
func (n *xmlNode) textOf(path ...string) string {
	node := n.find(path...)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.Text)
}
