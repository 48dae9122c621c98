package tracklog

import (
	"fmt"

	"github.com/beevik/etree"
)

// qname is an element name with its prefix resolved to a namespace URI.
type qname struct {
	Space string
	Local string
}

// nsScope maps in-scope prefixes to namespace URIs. The empty prefix is the
// default namespace.
type nsScope map[string]string

// enter returns the scope seen by e's children and e itself. The receiver is
// never modified; a copy is made only when e declares namespaces.
func (s nsScope) enter(e *etree.Element) nsScope {
	var next nsScope
	for _, a := range e.Attr {
		var prefix string
		switch {
		case a.Space == "" && a.Key == "xmlns":
			prefix = ""
		case a.Space == "xmlns":
			prefix = a.Key
		default:
			continue
		}
		if next == nil {
			next = make(nsScope, len(s)+1)
			for k, v := range s {
				next[k] = v
			}
		}
		next[prefix] = a.Value
	}
	if next == nil {
		return s
	}
	return next
}

// name resolves e's prefix. A prefix that was never declared makes the
// whole document unusable.
func (s nsScope) name(e *etree.Element) (qname, error) {
	if err := s.bound(e.Space); err != nil {
		return qname{}, fmt.Errorf("element <%s>: %w", e.FullTag(), err)
	}
	return qname{Space: s[e.Space], Local: e.Tag}, nil
}

// checkAttrs rejects attributes carrying an undeclared prefix.
func (s nsScope) checkAttrs(e *etree.Element) error {
	for _, a := range e.Attr {
		if a.Space == "xmlns" {
			continue
		}
		if err := s.bound(a.Space); err != nil {
			return fmt.Errorf("attribute %s on <%s>: %w", a.FullKey(), e.FullTag(), err)
		}
	}
	return nil
}

func (s nsScope) bound(prefix string) error {
	if prefix == "" || prefix == "xml" {
		return nil
	}
	if _, ok := s[prefix]; !ok {
		return documentErr("unbound prefix %q", prefix)
	}
	return nil
}

// nameResolver matches element names under an optional namespace. With an
// empty namespace only un-namespaced elements match.
type nameResolver struct {
	space string
}

// resolverFor inspects the document root. A namespaced <gpx> root makes its
// namespace apply to every lookup; anything else searches by bare name.
func resolverFor(root *etree.Element) (nameResolver, error) {
	n, err := nsScope(nil).enter(root).name(root)
	if err != nil {
		return nameResolver{}, err
	}
	if n.Local == "gpx" && n.Space != "" {
		return nameResolver{space: n.Space}, nil
	}
	return nameResolver{}, nil
}

func (r nameResolver) match(n qname, local string) bool {
	return n.Local == local && n.Space == r.space
}

// descendants returns every element under (and including) root named local,
// in document order. Every element on the way is checked for unbound
// prefixes, not only the matches.
func (r nameResolver) descendants(root *etree.Element, local string) ([]scopedElement, error) {
	var out []scopedElement
	var walk func(e *etree.Element, parent nsScope) error
	walk = func(e *etree.Element, parent nsScope) error {
		scope := parent.enter(e)
		n, err := scope.name(e)
		if err != nil {
			return err
		}
		if err := scope.checkAttrs(e); err != nil {
			return err
		}
		if r.match(n, local) {
			out = append(out, scopedElement{Element: e, scope: scope})
		}
		for _, c := range e.ChildElements() {
			if err := walk(c, scope); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// scopedElement is an element together with the namespace scope it was found
// in, so child lookups resolve prefixes the same way.
type scopedElement struct {
	*etree.Element
	scope nsScope
}

// child returns the first direct child of e named local, or nil.
func (r nameResolver) child(e scopedElement, local string) (*etree.Element, error) {
	for _, c := range e.ChildElements() {
		n, err := e.scope.enter(c).name(c)
		if err != nil {
			return nil, err
		}
		if r.match(n, local) {
			return c, nil
		}
	}
	return nil, nil
}
