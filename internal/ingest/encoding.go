package ingest

import "unicode/utf8"

// bom is the three-byte UTF-8 byte order mark some Windows-authored CSV
// exports (including Nubank's) prepend to the file.
var bom = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a leading UTF-8 byte order mark, if present.
func StripBOM(raw []byte) []byte {
	if len(raw) >= len(bom) && raw[0] == bom[0] && raw[1] == bom[1] && raw[2] == bom[2] {
		return raw[len(bom):]
	}
	return raw
}

// DecodeText returns raw decoded as UTF-8 if it already is, otherwise
// reinterprets it as Latin-1 (ISO-8859-1), where every byte maps directly
// to the Unicode code point of the same value. Older OFX exports from
// Brazilian banks are frequently Latin-1 rather than UTF-8; this keeps a
// malformed byte from aborting the whole import instead of failing on
// what is usually just an accented character in a memo field.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}
