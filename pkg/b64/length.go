package b64

// EncodedLen returns the length in bytes of the Base64 encoding of n bytes of
// input. The result is always a multiple of 4 and does not count a terminator.
func EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}

// DecodedLen returns the number of bytes DecodeTo writes for m bytes of Base64
// input. It is an upper bound on the payload size: each trailing '=' stands for
// one zero byte that is still written.
func DecodedLen(m int) int {
	return m/4*3 + m%4*3/4
}

// PaddingLen returns the number of trailing padding characters in src. The
// whole trailing run is counted, so non-canonical input such as "AB======"
// reports more than two.
func PaddingLen(src []byte) int {
	n := 0
	for i := len(src) - 1; i >= 0 && src[i] == Pad; i-- {
		n++
	}
	return n
}

// PayloadLen returns DecodedLen(len(src)) minus one byte per trailing '=',
// never less than zero. For output of Encode this is the length of the
// encoded data; for input with padding beyond the last group it only bounds
// the data that survives decoding.
func PayloadLen(src []byte) int {
	n := DecodedLen(len(src)) - PaddingLen(src)
	if n < 0 {
		return 0
	}
	return n
}
