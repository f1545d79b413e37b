package variable

import "encoding/xml"

// Node is the persisted form of a variable:
//
//	<variable name="author" type="INPUT-SAVE">Jane</variable>
type Node struct {
	XMLName xml.Name `xml:"variable"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr,omitempty"`
	Prefix  string   `xml:"prefix,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

// FromNode creates a variable from its persisted form.
func FromNode(n Node) (*Variable, error) {
	kind, err := ParseKind(n.Type)
	if err != nil {
		return nil, err
	}
	v := New(n.Name, kind)
	v.value = n.Value
	v.prefix = n.Prefix
	return v, nil
}

// Node returns the persisted form of v. INPUT values are not kept.
func (v *Variable) Node() Node {
	n := Node{
		Name:   v.name,
		Type:   v.kind.String(),
		Prefix: v.prefix,
	}
	if v.IsPersistent() {
		n.Value = v.value
	}
	return n
}

// Save copies v into n and marks v saved.
func (v *Variable) Save(n *Node) {
	*n = v.Node()
	v.modified = false
}
