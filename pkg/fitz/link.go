package fitz

import "fmt"

// Link is one link region on a page. Links form a singly linked chain,
// in the order the page declares them.
type Link struct {
	Rect Rect
	URI  string
	Next *Link
}

// NewLink builds a standalone link, mainly useful for tests and for
// asserting chain iteration.
func NewLink(r Rect, uri string) *Link {
	return &Link{Rect: r, URI: uri}
}

func (l *Link) String() string {
	return fmt.Sprintf("link %v uri=%q", l.Rect, l.URI)
}

// Links returns the head of the page's link chain, or nil when the
// page has none.
func (p *Page) Links() *Link {
	d := &Document{d: p.doc.d}
	annots, ok := d.resolveShallow(p.dict.get("Annots")).(pdfArray)
	if !ok {
		return nil
	}
	var head, tail *Link
	for _, a := range annots {
		annot, ok := d.resolveShallow(a).(pdfDict)
		if !ok {
			continue
		}
		if sub, _ := annot.getName("Subtype"); sub != "Link" {
			continue
		}
		link := &Link{Rect: annotRect(d, annot), URI: d.linkURI(annot)}
		if head == nil {
			head = link
		} else {
			tail.Next = link
		}
		tail = link
	}
	return head
}

func annotRect(d *Document, annot pdfDict) Rect {
	arr, ok := d.resolveShallow(annot.get("Rect")).(pdfArray)
	if !ok || len(arr) < 4 {
		return Rect{}
	}
	var v [4]float64
	for i := range v {
		v[i], _ = objNumber(d.resolveShallow(arr[i]))
	}
	return Rect{v[0], v[1], v[2], v[3]}.Normalize()
}

// linkURI renders the link's target as a URI: /URI actions verbatim,
// internal destinations as "#page=N" (1-based).
func (d *Document) linkURI(annot pdfDict) string {
	if action, ok := d.resolveShallow(annot.get("A")).(pdfDict); ok {
		if typ, _ := action.getName("S"); typ == "URI" {
			if s, ok := action.getString("URI"); ok {
				return s.text()
			}
		}
		if typ, _ := action.getName("S"); typ == "GoTo" {
			return d.destURI(action.get("D"))
		}
	}
	if dest := annot.get("Dest"); dest != nil {
		return d.destURI(dest)
	}
	return ""
}

// destURI resolves an explicit or named destination to "#page=N".
func (d *Document) destURI(dest pdfObject) string {
	dest = d.resolveShallow(dest)
	switch v := dest.(type) {
	case pdfString:
		return d.namedDestURI(v.text())
	case pdfName:
		return d.namedDestURI(string(v))
	case pdfArray:
		if len(v) == 0 {
			return ""
		}
		if ref, ok := v[0].(pdfRef); ok {
			if n := d.pageNumberForRef(ref); n >= 0 {
				return fmt.Sprintf("#page=%d", n+1)
			}
		}
		if n, ok := objNumber(v[0]); ok {
			return fmt.Sprintf("#page=%d", int(n)+1)
		}
	}
	return ""
}

// namedDestURI looks the name up in /Dests or the name tree.
func (d *Document) namedDestURI(name string) string {
	root := d.d.root
	if dests, ok := d.resolveShallow(root.get("Dests")).(pdfDict); ok {
		if target := dests.get(name); target != nil {
			return d.destURI(target)
		}
	}
	if names, ok := d.resolveShallow(root.get("Names")).(pdfDict); ok {
		if target := d.lookupNameTree(names.get("Dests"), name, 0); target != nil {
			if dd, ok := d.resolveShallow(target).(pdfDict); ok {
				return d.destURI(dd.get("D"))
			}
			return d.destURI(target)
		}
	}
	return ""
}

func (d *Document) lookupNameTree(node pdfObject, name string, depth int) pdfObject {
	if depth > 32 {
		return nil
	}
	dict, ok := d.resolveShallow(node).(pdfDict)
	if !ok {
		return nil
	}
	if names, ok := d.resolveShallow(dict.get("Names")).(pdfArray); ok {
		for i := 0; i+1 < len(names); i += 2 {
			if s, ok := d.resolveShallow(names[i]).(pdfString); ok && s.text() == name {
				return names[i+1]
			}
		}
	}
	if kids, ok := d.resolveShallow(dict.get("Kids")).(pdfArray); ok {
		for _, kid := range kids {
			if found := d.lookupNameTree(kid, name, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

// pageNumberForRef maps a page object reference to its 0-based number.
func (d *Document) pageNumberForRef(ref pdfRef) int {
	if n, ok := d.d.pageNums[ref.num]; ok {
		return n
	}
	return -1
}
