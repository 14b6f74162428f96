package fitz

import (
	"bytes"
	"fmt"
	"os"
)

// Document is an open document. The zero value is not usable; open one
// with OpenDocument or NewDocumentFromBytes. Document values may be
// copied freely, all copies share the same underlying state.
type Document struct {
	d *docState
}

type docState struct {
	data    []byte
	path    string
	version string

	trailer pdfDict
	xref    map[int]xrefEntry
	cache   map[int]pdfObject
	loading map[int]bool

	root pdfDict
	info pdfDict

	crypt         *cryptHandler
	authenticated bool

	pages    []pdfDict   // with inherited attributes merged in
	pageNums map[int]int // page object number -> 0-based page index

	fonts map[string]*engineFont
}

// OpenDocument opens the document stored in the named file.
func OpenDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := NewDocumentFromBytes(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.d.path = path
	return doc, nil
}

// NewDocumentFromBytes opens a document held in memory. The data is
// retained by the document and must not be modified afterwards.
func NewDocumentFromBytes(data []byte) (Document, error) {
	st := &docState{
		data:    data,
		xref:    make(map[int]xrefEntry),
		cache:   make(map[int]pdfObject),
		loading: make(map[int]bool),
		fonts:   make(map[string]*engineFont),
	}
	doc := Document{d: st}
	if err := st.open(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (st *docState) open() error {
	if !bytes.HasPrefix(st.data, []byte("%PDF-")) {
		// The header may be preceded by junk; search the first 1k.
		head := st.data
		if len(head) > 1024 {
			head = head[:1024]
		}
		i := bytes.Index(head, []byte("%PDF-"))
		if i < 0 {
			return fmt.Errorf("fitz: not a PDF file")
		}
		st.data = st.data[i:]
	}
	if end := bytes.IndexAny(st.data[5:], "\r\n"); end > 0 && end < 10 {
		st.version = string(st.data[5 : 5+end])
	}

	d := &Document{d: st}
	start, err := findStartXref(st.data)
	if err != nil {
		return err
	}
	if err := d.loadXref(start); err != nil {
		return err
	}

	if err := d.setupCrypt(); err != nil {
		return err
	}

	root, ok := d.resolveShallow(st.trailer.get("Root")).(pdfDict)
	if !ok {
		return fmt.Errorf("fitz: missing document catalog")
	}
	st.root = root
	if info, ok := d.resolveShallow(st.trailer.get("Info")).(pdfDict); ok {
		st.info = info
	}

	return d.loadPageTree()
}

// resolve chases a reference to its object. Non-references are
// returned unchanged.
func (d *Document) resolve(ref pdfRef) pdfObject {
	obj, err := d.loadObjectAt(ref.num)
	if err != nil {
		return pdfNull{}
	}
	return obj
}

// resolveShallow resolves obj if it is a reference.
func (d *Document) resolveShallow(obj pdfObject) pdfObject {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(pdfRef)
		if !ok {
			return obj
		}
		obj = d.resolve(ref)
	}
	return obj
}

// loadObjectAt loads object num, consulting the cache and decrypting
// strings and streams as required.
func (d *Document) loadObjectAt(num int) (pdfObject, error) {
	st := d.d
	if obj, ok := st.cache[num]; ok {
		return obj, nil
	}
	if st.loading[num] {
		return nil, fmt.Errorf("fitz: circular object reference %d", num)
	}
	entry, ok := st.xref[num]
	if !ok || !entry.inUse {
		return pdfNull{}, nil
	}
	st.loading[num] = true
	defer delete(st.loading, num)

	var obj pdfObject
	var err error
	if entry.compressed {
		obj, err = d.loadFromObjectStream(entry.streamNum, entry.streamIdx, num)
		// Objects in object streams are never individually encrypted.
	} else {
		if entry.offset >= int64(len(st.data)) {
			return nil, fmt.Errorf("fitz: object %d offset beyond end of file", num)
		}
		p := newParser(st.data, int(entry.offset), d.resolve)
		var gotNum int
		gotNum, _, obj, err = p.parseIndirect()
		if err == nil && gotNum != num {
			err = fmt.Errorf("fitz: object %d found where %d expected", gotNum, num)
		}
		if err == nil && st.crypt != nil {
			obj = st.crypt.decryptObject(obj, num, entry.gen)
		}
	}
	if err != nil {
		return nil, err
	}
	st.cache[num] = obj
	return obj, nil
}

// setupCrypt inspects /Encrypt and tries the empty user password.
func (d *Document) setupCrypt() error {
	st := d.d
	encObj := st.trailer.get("Encrypt")
	if encObj == nil {
		return nil
	}
	// The encrypt dict itself is never encrypted, so plain resolution
	// (crypt not yet installed) is correct here.
	enc, ok := d.resolveShallow(encObj).(pdfDict)
	if !ok {
		return fmt.Errorf("fitz: malformed /Encrypt")
	}
	var fileID []byte
	if ids, ok := st.trailer.getArray("ID"); ok && len(ids) > 0 {
		if s, ok := ids[0].(pdfString); ok {
			fileID = s.value
		}
	}
	crypt, err := newCryptHandler(enc, fileID)
	if err != nil {
		return err
	}
	st.crypt = crypt
	st.authenticated = crypt.authenticate("")
	return nil
}

// NeedsPassword reports whether the document is encrypted and the
// empty user password did not grant access.
func (doc Document) NeedsPassword() bool {
	return doc.d.crypt != nil && !doc.d.authenticated
}

// AuthenticatePassword tries pw as user and owner password and reports
// whether access was granted.
func (doc Document) AuthenticatePassword(pw string) bool {
	st := doc.d
	if st.crypt == nil {
		return true
	}
	if st.crypt.authenticate(pw) {
		st.authenticated = true
		// Drop objects decrypted with a wrong key, if any.
		st.cache = make(map[int]pdfObject)
	}
	return st.authenticated
}

// CountPages returns the number of pages.
func (doc Document) CountPages() int {
	return len(doc.d.pages)
}

// Path returns the file path the document was opened from, if any.
func (doc Document) Path() string { return doc.d.path }

// loadPageTree flattens the page tree into a page list, carrying down
// the inheritable attributes.
func (d *Document) loadPageTree() error {
	st := d.d
	pagesObj, ok := d.resolveShallow(st.root.get("Pages")).(pdfDict)
	if !ok {
		return fmt.Errorf("fitz: catalog has no page tree")
	}
	st.pageNums = make(map[int]int)
	inherited := pdfDict{}
	seen := map[int]bool{}
	return d.walkPages(pagesObj, -1, inherited, seen, 0)
}

var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

func (d *Document) walkPages(node pdfDict, objNum int, inherited pdfDict, seen map[int]bool, depth int) error {
	if depth > 64 {
		return fmt.Errorf("fitz: page tree too deep")
	}
	merged := pdfDict{}
	for k, v := range inherited {
		merged[k] = v
	}
	for _, key := range inheritable {
		if v := node.get(key); v != nil {
			merged[pdfName(key)] = v
		}
	}

	typ, _ := node.getName("Type")
	if typ == "Page" {
		page := pdfDict{}
		for k, v := range node {
			page[k] = v
		}
		for k, v := range merged {
			if _, ok := page[k]; !ok {
				page[k] = v
			}
		}
		if objNum >= 0 {
			d.d.pageNums[objNum] = len(d.d.pages)
		}
		d.d.pages = append(d.d.pages, page)
		return nil
	}

	kids, _ := node.getArray("Kids")
	for _, kid := range kids {
		kidNum := -1
		if ref, ok := kid.(pdfRef); ok {
			if seen[ref.num] {
				continue
			}
			seen[ref.num] = true
			kidNum = ref.num
		}
		kidDict, ok := d.resolveShallow(kid).(pdfDict)
		if !ok {
			continue
		}
		if err := d.walkPages(kidDict, kidNum, merged, seen, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// LookupMetadata returns document metadata for a key. Supported keys
// are "format", "encryption" and "info:<Name>" for entries of the info
// dictionary. The second return value reports whether the key has a
// value.
func (doc Document) LookupMetadata(key string) (string, bool) {
	d := &Document{d: doc.d}
	st := doc.d
	switch key {
	case "format":
		v := st.version
		if v == "" {
			v = "1.4"
		}
		return "PDF " + v, true
	case "encryption":
		if st.crypt == nil {
			return "", false
		}
		return st.crypt.description(), true
	}
	const prefix = "info:"
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		if st.info == nil {
			return "", false
		}
		if s, ok := d.resolveShallow(st.info.get(key[len(prefix):])).(pdfString); ok {
			return s.text(), true
		}
	}
	return "", false
}

// OutputIntent returns the colour space named by the document's first
// output intent, or nil when the document declares none.
func (doc Document) OutputIntent() *Colorspace {
	d := &Document{d: doc.d}
	intents, ok := d.resolveShallow(doc.d.root.get("OutputIntents")).(pdfArray)
	if !ok || len(intents) == 0 {
		return nil
	}
	intent, ok := d.resolveShallow(intents[0]).(pdfDict)
	if !ok {
		return nil
	}
	n := int64(3)
	if prof, ok := d.resolveShallow(intent.get("DestOutputProfile")).(*pdfStream); ok {
		if v, ok := prof.dict.getInt("N"); ok {
			n = v
		}
	}
	switch n {
	case 1:
		return DeviceGray
	case 4:
		return DeviceCMYK
	}
	return DeviceRGB
}
