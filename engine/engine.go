package engine

import (
	"encoding/xml"

	"github.com/hlmerscher/jackc/tokenizer"
)

// NestedToken is one grammar rule of the parse tree. Children are tokens
// and nested rules in source order.
type NestedToken struct {
	XMLName  xml.Name
	Children []xml.Marshaler
}

func (nt *NestedToken) append(child xml.Marshaler) {
	nt.Children = append(nt.Children, child)
}

func (nt *NestedToken) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: nt.XMLName}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range nt.Children {
		if err := e.Encode(child); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// treeBuilder records the rules the compiler enters and the tokens it
// consumes. A nil builder records nothing.
type treeBuilder struct {
	root  *NestedToken
	stack []*NestedToken
}

func (b *treeBuilder) open(rule string) {
	if b == nil {
		return
	}
	node := &NestedToken{XMLName: xml.Name{Local: rule}}
	if n := len(b.stack); n > 0 {
		b.stack[n-1].append(node)
	} else {
		b.root = node
	}
	b.stack = append(b.stack, node)
}

func (b *treeBuilder) close() {
	if b == nil {
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *treeBuilder) token(token tokenizer.Token) {
	if b == nil || len(b.stack) == 0 {
		return
	}
	b.stack[len(b.stack)-1].append(token)
}
