package fitz

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
)

// ErrPassword is reported when an encrypted document rejects the
// supplied password.
var ErrPassword = errors.New("fitz: invalid password")

type cryptMethod int

const (
	cryptRC4 cryptMethod = iota
	cryptAESV2
	cryptAESV3
)

// The standard security handler's password pad (PDF 32000-1 7.6.3.3).
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// cryptHandler implements the standard security handler: RC4 40/128,
// AES-128 (V4) and AES-256 (V5/R6).
type cryptHandler struct {
	version   int
	revision  int
	keyBits   int
	perms     int32
	o, u      []byte
	oe, ue    []byte
	fileID    []byte
	encMeta   bool
	method    cryptMethod
	key       []byte // nil until a password authenticates
	keyLenHdr int
}

func newCryptHandler(enc pdfDict, fileID []byte) (*cryptHandler, error) {
	filter, _ := enc.getName("Filter")
	if filter != "Standard" {
		return nil, fmt.Errorf("fitz: unsupported security handler /%s", filter)
	}
	h := &cryptHandler{fileID: fileID, encMeta: true, keyBits: 40}
	if v, ok := enc.getInt("V"); ok {
		h.version = int(v)
	}
	if r, ok := enc.getInt("R"); ok {
		h.revision = int(r)
	}
	if l, ok := enc.getInt("Length"); ok {
		h.keyBits = int(l)
	}
	if p, ok := enc.getInt("P"); ok {
		h.perms = int32(p)
	}
	if em, ok := enc.getBool("EncryptMetadata"); ok {
		h.encMeta = em
	}
	if s, ok := enc.getString("O"); ok {
		h.o = s.value
	}
	if s, ok := enc.getString("U"); ok {
		h.u = s.value
	}
	if s, ok := enc.getString("OE"); ok {
		h.oe = s.value
	}
	if s, ok := enc.getString("UE"); ok {
		h.ue = s.value
	}

	switch h.version {
	case 1:
		h.method = cryptRC4
		h.keyBits = 40
	case 2, 3:
		h.method = cryptRC4
	case 4:
		h.method = cryptAESV2
		h.keyBits = 128
		// /CF may name RC4 for V4; check the standard crypt filter.
		if cf, ok := enc.get("CF").(pdfDict); ok {
			if std, ok := cf.get("StdCF").(pdfDict); ok {
				if cfm, _ := std.getName("CFM"); cfm == "V2" {
					h.method = cryptRC4
				}
			}
		}
	case 5:
		h.method = cryptAESV3
		h.keyBits = 256
	default:
		return nil, fmt.Errorf("fitz: unsupported encryption V=%d", h.version)
	}
	return h, nil
}

func (h *cryptHandler) description() string {
	switch h.method {
	case cryptAESV3:
		return "Standard V5 R6 256-bit AES"
	case cryptAESV2:
		return fmt.Sprintf("Standard V4 R%d 128-bit AES", h.revision)
	}
	return fmt.Sprintf("Standard V%d R%d %d-bit RC4", h.version, h.revision, h.keyBits)
}

func padPassword(pw string) []byte {
	b := []byte(pw)
	if len(b) > 32 {
		b = b[:32]
	}
	out := make([]byte, 32)
	n := copy(out, b)
	copy(out[n:], passwordPad)
	return out
}

// authenticate tries pw as user then owner password; on success the
// file key is retained.
func (h *cryptHandler) authenticate(pw string) bool {
	if h.revision >= 5 {
		return h.authenticateV5(pw)
	}
	if h.authenticateUser(pw) {
		return true
	}
	return h.authenticateOwner(pw)
}

func (h *cryptHandler) authenticateUser(pw string) bool {
	key := h.computeFileKey(pw)
	computed := h.computeU(key)
	n := len(h.u)
	if h.revision >= 3 {
		n = 16
	}
	if n > len(computed) || n > len(h.u) {
		return false
	}
	if bytes.Equal(computed[:n], h.u[:n]) {
		h.key = key
		return true
	}
	return false
}

func (h *cryptHandler) authenticateOwner(pw string) bool {
	sum := md5.Sum(padPassword(pw))
	if h.revision >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(sum[:])
		}
	}
	keyLen := min(h.keyBits/8, 16)
	key := sum[:keyLen]

	user := make([]byte, len(h.o))
	copy(user, h.o)
	if h.revision >= 3 {
		for i := 19; i >= 0; i-- {
			tmp := make([]byte, len(key))
			for j := range key {
				tmp[j] = key[j] ^ byte(i)
			}
			c, _ := rc4.NewCipher(tmp)
			c.XORKeyStream(user, user)
		}
	} else {
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(user, user)
	}
	return h.authenticateUser(string(user))
}

// computeFileKey implements ISO 32000 algorithm 2.
func (h *cryptHandler) computeFileKey(pw string) []byte {
	m := md5.New()
	m.Write(padPassword(pw))
	m.Write(h.o)
	p := h.perms
	m.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	m.Write(h.fileID)
	if h.revision >= 4 && !h.encMeta {
		m.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	}
	sum := m.Sum(nil)

	keyLen := min(h.keyBits/8, 16)
	if h.revision >= 3 {
		for i := 0; i < 50; i++ {
			s := md5.Sum(sum[:keyLen])
			sum = s[:]
		}
	}
	return sum[:keyLen]
}

// computeU implements algorithms 4 (R2) and 5 (R>=3).
func (h *cryptHandler) computeU(key []byte) []byte {
	if h.revision >= 3 {
		m := md5.New()
		m.Write(passwordPad)
		m.Write(h.fileID)
		sum := m.Sum(nil)

		out := make([]byte, 16)
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(out, sum[:16])
		for i := 1; i <= 19; i++ {
			tmp := make([]byte, len(key))
			for j := range key {
				tmp[j] = key[j] ^ byte(i)
			}
			c, _ := rc4.NewCipher(tmp)
			c.XORKeyStream(out, out)
		}
		padded := make([]byte, 32)
		copy(padded, out)
		return padded
	}
	out := make([]byte, 32)
	c, _ := rc4.NewCipher(key)
	c.XORKeyStream(out, passwordPad)
	return out
}

// authenticateV5 implements the AES-256 (R6) password checks.
func (h *cryptHandler) authenticateV5(pw string) bool {
	if len(h.u) < 48 || len(h.o) < 48 {
		return false
	}
	pwb := []byte(pw)
	if len(pwb) > 127 {
		pwb = pwb[:127]
	}
	// User password: hash with validation salt U[32:40].
	if bytes.Equal(hash2B(pwb, h.u[32:40], nil), h.u[:32]) {
		ik := hash2B(pwb, h.u[40:48], nil)
		h.key = aesNoPadDecrypt(ik, h.ue)
		return h.key != nil
	}
	// Owner password: validation salt O[32:40], plus the whole U.
	if bytes.Equal(hash2B(pwb, h.o[32:40], h.u[:48]), h.o[:32]) {
		ik := hash2B(pwb, h.o[40:48], h.u[:48])
		h.key = aesNoPadDecrypt(ik, h.oe)
		return h.key != nil
	}
	return false
}

// hash2B is the iterated SHA-2 hash of ISO 32000-2 algorithm 2.B.
func hash2B(pw, salt, udata []byte) []byte {
	k := sha256.New()
	k.Write(pw)
	k.Write(salt)
	k.Write(udata)
	key := k.Sum(nil)

	for round := 0; ; round++ {
		k1 := make([]byte, 0, 64*(len(pw)+len(key)+len(udata)))
		for i := 0; i < 64; i++ {
			k1 = append(k1, pw...)
			k1 = append(k1, key...)
			k1 = append(k1, udata...)
		}
		block, err := aes.NewCipher(key[:16])
		if err != nil {
			return nil
		}
		e := make([]byte, len(k1))
		cipher.NewCBCEncrypter(block, key[16:32]).CryptBlocks(e, k1)

		var mod int
		for _, b := range e[:16] {
			mod += int(b)
		}
		switch mod % 3 {
		case 0:
			s := sha256.Sum256(e)
			key = s[:]
		case 1:
			s := sha512.Sum384(e)
			key = s[:]
		case 2:
			s := sha512.Sum512(e)
			key = s[:]
		}
		if round >= 63 && int(e[len(e)-1]) <= round-32 {
			break
		}
	}
	return key[:32]
}

func aesNoPadDecrypt(key, data []byte) []byte {
	if len(key) < 32 || len(data) < 32 {
		return nil
	}
	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil
	}
	out := make([]byte, 32)
	iv := make([]byte, 16)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data[:32])
	return out
}

// objectKey derives the per-object key (not used for AES-256, which
// encrypts everything with the file key).
func (h *cryptHandler) objectKey(num, gen int) []byte {
	if h.method == cryptAESV3 {
		return h.key
	}
	m := md5.New()
	m.Write(h.key)
	m.Write([]byte{byte(num), byte(num >> 8), byte(num >> 16), byte(gen), byte(gen >> 8)})
	if h.method == cryptAESV2 {
		m.Write([]byte{0x73, 0x41, 0x6C, 0x54}) // "sAlT"
	}
	sum := m.Sum(nil)
	n := min(len(h.key)+5, 16)
	return sum[:n]
}

// decryptData decrypts string or stream payload bytes in place of a
// fresh slice.
func (h *cryptHandler) decryptData(data []byte, num, gen int) []byte {
	if h.key == nil {
		return data
	}
	key := h.objectKey(num, gen)
	switch h.method {
	case cryptRC4:
		out := make([]byte, len(data))
		c, err := rc4.NewCipher(key)
		if err != nil {
			return data
		}
		c.XORKeyStream(out, data)
		return out
	case cryptAESV2, cryptAESV3:
		if len(data) < 16 {
			return nil
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return data
		}
		ct := data[16:]
		if len(ct)%aes.BlockSize != 0 {
			ct = ct[:len(ct)/aes.BlockSize*aes.BlockSize]
		}
		out := make([]byte, len(ct))
		cipher.NewCBCDecrypter(block, data[:16]).CryptBlocks(out, ct)
		if len(out) > 0 {
			pad := int(out[len(out)-1])
			if pad > 0 && pad <= 16 && pad <= len(out) {
				out = out[:len(out)-pad]
			}
		}
		return out
	}
	return data
}

// decryptObject walks an object decrypting every string and stream.
func (h *cryptHandler) decryptObject(obj pdfObject, num, gen int) pdfObject {
	switch v := obj.(type) {
	case pdfString:
		return pdfString{value: h.decryptData(v.value, num, gen), hex: v.hex}
	case pdfArray:
		out := make(pdfArray, len(v))
		for i, o := range v {
			out[i] = h.decryptObject(o, num, gen)
		}
		return out
	case pdfDict:
		out := make(pdfDict, len(v))
		for k, o := range v {
			out[k] = h.decryptObject(o, num, gen)
		}
		return out
	case *pdfStream:
		dict, _ := h.decryptObject(v.dict, num, gen).(pdfDict)
		// Embedded crypt filters may exempt the stream; only the
		// standard identity case is recognised.
		if typ, _ := dict.getName("Type"); typ == "XRef" {
			return &pdfStream{dict: dict, raw: v.raw}
		}
		return &pdfStream{dict: dict, raw: h.decryptData(v.raw, num, gen)}
	}
	return obj
}
