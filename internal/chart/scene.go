package chart

import (
	"html"
	"io"
	"strings"
)

// Attr is one xml attribute. Attributes keep insertion order so output is stable
type Attr struct {
	Name  string
	Value string
}

// Node is an element of the in-memory scene graph
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// El builds a node from alternating attribute names and values
func El(tag string, kv ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attrs = append(n.Attrs, Attr{Name: kv[i], Value: kv[i+1]})
	}
	return n
}

// Set replaces an attribute value or appends the attribute
func (n *Node) Set(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Get returns the attribute value, "" when unset
func (n *Node) Get(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) WithText(s string) *Node {
	n.Text = s
	return n
}

// Find returns the first node in depth-first order with the given id
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.Get("id") == id {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// FindAll collects every node whose class attribute contains class
func (n *Node) FindAll(class string) []*Node {
	var out []*Node
	n.walk(func(m *Node) {
		for _, c := range strings.Fields(m.Get("class")) {
			if c == class {
				out = append(out, m)
				return
			}
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Markup serialises the subtree
func (n *Node) Markup() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) WriteTo(w io.Writer) (int64, error) {
	c, err := io.WriteString(w, n.Markup())
	return int64(c), err
}

func (n *Node) write(sb *strings.Builder) {
	sb.WriteString("<" + n.Tag)
	for _, a := range n.Attrs {
		sb.WriteString(" " + a.Name + `="` + html.EscapeString(a.Value) + `"`)
	}
	if n.Text == "" && len(n.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteString(">")
	sb.WriteString(html.EscapeString(n.Text))
	for _, c := range n.Children {
		c.write(sb)
	}
	sb.WriteString("</" + n.Tag + ">")
}
