package b64

const (
	// alphabet maps symbol values 0-63 to their output characters.
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	// Pad is the padding character.
	Pad = '='

	// padSymbol is what the reverse table yields for Pad.
	padSymbol = 64

	// invalidSymbol is what the reverse table yields for any byte outside the
	// alphabet that is not Pad.
	invalidSymbol = 0xFF
)

// reverse is the inverse of alphabet. It is filled once at init and never
// written again.
var reverse = func() (t [256]byte) {
	for i := range t {
		t[i] = invalidSymbol
	}
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = byte(i)
	}
	t[Pad] = padSymbol
	return t
}()

// symbolOf returns the 6-bit value of c, padSymbol or invalidSymbol.
func symbolOf(c byte) byte {
	return reverse[c]
}
