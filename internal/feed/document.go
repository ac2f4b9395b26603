package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrMalformedXML aborts an entire import: a document that does not parse
// produces a single file-level error, never partial records.
var ErrMalformedXML = errors.New("malformed XML document")

// Element is one node of a parsed feed document. The tree is built once per
// import and read-only afterwards.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	Text     string
}

// ParseDocument tokenizes an XML document into an element tree. The returned
// element is a synthetic root whose children are the document's top-level
// elements. Brazilian feeds frequently declare ISO-8859-1, so non-UTF-8
// charsets are transcoded.
func ParseDocument(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	root := &Element{Name: "#document"}
	stack := []*Element{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				el.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					el.Attrs[a.Name.Local] = a.Value
				}
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			stack[len(stack)-1].Text += string(t)
		}
	}

	if len(root.Children) == 0 {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedXML)
	}
	return root, nil
}

// Find returns the first descendant (depth-first) whose name matches,
// case-insensitively, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll collects every descendant whose name matches, in document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first direct child, among the
// given tag-name aliases, that carries non-empty text. Alias order is the
// priority order.
func (e *Element) ChildText(aliases ...string) string {
	for _, name := range aliases {
		if c := e.Child(name); c != nil {
			if text := c.TrimmedText(); text != "" {
				return text
			}
		}
	}
	return ""
}

// Attr returns the named attribute value, or "".
func (e *Element) Attr(name string) string {
	for k, v := range e.Attrs {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// TrimmedText returns the element's own character data with surrounding
// whitespace removed.
func (e *Element) TrimmedText() string {
	return strings.TrimSpace(e.Text)
}
