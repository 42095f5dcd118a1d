package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Element is one node of a parsed markup document.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element

	text    strings.Builder
	hasText bool
}

// Text returns the element's character data, or nil when it had none.
// Empty elements such as <email nil="true"/> therefore read as absent.
func (e *Element) Text() *string {
	if !e.hasText {
		return nil
	}
	s := e.text.String()
	return &s
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// Find returns the first direct child named name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child named name.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Document is a parsed markup document.
type Document struct {
	Root *Element
}

// Parse reads a markup document. Encodings other than UTF-8 are decoded
// according to the document's XML declaration.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse document: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			el := stack[len(stack)-1]
			// Whitespace between child elements is layout, not data.
			if len(el.Children) > 0 && strings.TrimSpace(string(t)) == "" {
				continue
			}
			el.text.Write(t)
			el.hasText = true
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse document: no root element")
	}
	return &Document{Root: root}, nil
}
