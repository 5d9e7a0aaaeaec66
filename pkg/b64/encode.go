package b64

// EncodeTo writes the Base64 encoding of src into dst and reports whether it
// did. It writes exactly EncodedLen(len(src)) bytes and leaves the rest of dst
// untouched; the only way to fail is a dst shorter than that, in which case
// nothing is written.
func EncodeTo(dst, src []byte) bool {
	if len(dst) < EncodedLen(len(src)) {
		return false
	}

	full := len(src) - len(src)%3
	i := 0
	for j := 0; j < full; j += 3 {
		a, b, c := src[j], src[j+1], src[j+2]
		dst[i+0] = alphabet[a>>2]
		dst[i+1] = alphabet[(a&0x03)<<4|b>>4]
		dst[i+2] = alphabet[(b&0x0f)<<2|c>>6]
		dst[i+3] = alphabet[c&0x3f]
		i += 4
	}

	switch len(src) - full {
	case 1:
		a := src[full]
		dst[i+0] = alphabet[a>>2]
		dst[i+1] = alphabet[(a&0x03)<<4]
		dst[i+2] = Pad
		dst[i+3] = Pad
	case 2:
		a, b := src[full], src[full+1]
		dst[i+0] = alphabet[a>>2]
		dst[i+1] = alphabet[(a&0x03)<<4|b>>4]
		dst[i+2] = alphabet[(b&0x0f)<<2]
		dst[i+3] = Pad
	}

	return true
}

// Encode returns the Base64 encoding of src in a newly allocated slice.
//
// The backing array holds one extra zero byte past len(out), so
// out[:len(out)+1] is a NUL-terminated string for consumers that need one.
func Encode(src []byte) []byte {
	n := EncodedLen(len(src))
	out := make([]byte, n+1)
	EncodeTo(out, src)
	return out[:n]
}

// EncodeToString returns the Base64 encoding of src.
func EncodeToString(src []byte) string {
	return string(Encode(src))
}
