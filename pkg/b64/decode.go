package b64

// DecodeTo decodes src into dst, writing exactly DecodedLen(len(src)) bytes.
//
// Padding characters contribute zero bits, so a padded input yields one zero
// byte per '=' at the end of the output; the output is not trimmed. On error
// the contents of dst are undefined.
func DecodeTo(dst, src []byte) error {
	if len(src)%4 != 0 {
		return &DecodeError{Kind: ErrInvalidLength, Offset: len(src)}
	}
	if need := DecodedLen(len(src)); len(dst) < need {
		return &DecodeError{Kind: ErrShortBuffer, Offset: need}
	}

	var quad [4]byte
	padded := false
	i := 0
	for j := 0; j < len(src); j += 4 {
		for k := range quad {
			c := src[j+k]
			v := symbolOf(c)
			switch {
			case v == invalidSymbol:
				return &DecodeError{Kind: ErrInvalidCharacter, Offset: j + k, Char: c}
			case v == padSymbol:
				padded = true
				v = 0
			case padded:
				return &DecodeError{Kind: ErrPaddingViolation, Offset: j + k, Char: c}
			}
			quad[k] = v
		}

		a, b, c, d := quad[0], quad[1], quad[2], quad[3]
		dst[i+0] = a<<2 | b>>4
		dst[i+1] = b<<4 | c>>2
		dst[i+2] = c<<6 | d
		i += 3
	}

	return nil
}

// Decode returns the bytes represented by src in a newly allocated slice of
// DecodedLen(len(src)) bytes. The backing array holds one extra zero byte
// past len(out). On error it returns nil and the buffer is discarded.
func Decode(src []byte) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, &DecodeError{Kind: ErrInvalidLength, Offset: len(src)}
	}

	n := DecodedLen(len(src))
	out := make([]byte, n+1)
	if err := DecodeTo(out, src); err != nil {
		return nil, err
	}
	return out[:n], nil
}

// DecodeString returns the bytes represented by the Base64 string s.
func DecodeString(s string) ([]byte, error) {
	return Decode([]byte(s))
}
