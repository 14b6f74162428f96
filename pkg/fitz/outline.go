package fitz

// Outline is one node of the document outline tree.
type Outline struct {
	Title  string
	URI    string
	IsOpen bool
	Down   []*Outline
}

// LoadOutline returns the document's outline tree, or nil when the
// document has none.
func (doc Document) LoadOutline() []*Outline {
	d := &Document{d: doc.d}
	root, ok := d.resolveShallow(doc.d.root.get("Outlines")).(pdfDict)
	if !ok {
		return nil
	}
	return d.outlineLevel(root.get("First"), 0)
}

func (d *Document) outlineLevel(first pdfObject, depth int) []*Outline {
	if depth > 64 {
		return nil
	}
	var out []*Outline
	seen := map[string]bool{}
	cur := first
	for {
		node, ok := d.resolveShallow(cur).(pdfDict)
		if !ok {
			return out
		}
		if ref, isRef := cur.(pdfRef); isRef {
			key := ref.String()
			if seen[key] {
				return out
			}
			seen[key] = true
		}
		item := &Outline{}
		if s, ok := node.getString("Title"); ok {
			item.Title = s.text()
		}
		if count, ok := node.getInt("Count"); ok {
			item.IsOpen = count > 0
		}
		item.URI = d.outlineURI(node)
		item.Down = d.outlineLevel(node.get("First"), depth+1)
		out = append(out, item)

		cur = node.get("Next")
		if cur == nil {
			return out
		}
	}
}

func (d *Document) outlineURI(node pdfDict) string {
	if action, ok := d.resolveShallow(node.get("A")).(pdfDict); ok {
		if typ, _ := action.getName("S"); typ == "URI" {
			if s, ok := action.getString("URI"); ok {
				return s.text()
			}
		}
		if typ, _ := action.getName("S"); typ == "GoTo" {
			return d.destURI(action.get("D"))
		}
	}
	if dest := node.get("Dest"); dest != nil {
		return d.destURI(dest)
	}
	return ""
}

// OutlineItem is the item an outline iterator currently rests on. A
// cursor sitting on an empty child list yields an invalid item.
type OutlineItem struct {
	node *Outline
}

// Valid reports whether the cursor points at an actual outline entry.
func (it *OutlineItem) Valid() bool { return it.node != nil }

// Title returns the entry's title.
func (it *OutlineItem) Title() string {
	if it.node == nil {
		return ""
	}
	return it.node.Title
}

// URI returns the entry's target.
func (it *OutlineItem) URI() string {
	if it.node == nil {
		return ""
	}
	return it.node.URI
}

// IsOpen reports whether the entry is shown expanded.
func (it *OutlineItem) IsOpen() bool {
	return it.node != nil && it.node.IsOpen
}

type outlineFrame struct {
	list []*Outline
	idx  int
}

// OutlineIterator is a cursor over the outline tree offering the three
// movement primitives of the binding API. Each movement returns 0 when
// the cursor lands on a valid item, 1 when it moved onto a position
// with no item (an empty child list), and -1 when no such move exists.
type OutlineIterator struct {
	cur   outlineFrame
	stack []outlineFrame
}

// NewOutlineIterator returns an iterator positioned on the first
// top-level outline entry.
func NewOutlineIterator(doc Document) *OutlineIterator {
	return &OutlineIterator{cur: outlineFrame{list: doc.LoadOutline()}}
}

// Item returns the item under the cursor; it is invalid when the
// cursor rests on an empty list position.
func (it *OutlineIterator) Item() *OutlineItem {
	if it.cur.idx < len(it.cur.list) {
		return &OutlineItem{node: it.cur.list[it.cur.idx]}
	}
	return &OutlineItem{}
}

// Down moves into the current item's child list.
func (it *OutlineIterator) Down() int {
	if it.cur.idx >= len(it.cur.list) {
		return -1
	}
	node := it.cur.list[it.cur.idx]
	it.stack = append(it.stack, it.cur)
	it.cur = outlineFrame{list: node.Down}
	if len(node.Down) == 0 {
		return 1
	}
	return 0
}

// Next moves to the next sibling.
func (it *OutlineIterator) Next() int {
	if it.cur.idx+1 < len(it.cur.list) {
		it.cur.idx++
		return 0
	}
	return -1
}

// Up moves back to the parent item.
func (it *OutlineIterator) Up() int {
	n := len(it.stack)
	if n == 0 {
		return -1
	}
	it.cur = it.stack[n-1]
	it.stack = it.stack[:n-1]
	if it.cur.idx < len(it.cur.list) {
		return 0
	}
	return 1
}
