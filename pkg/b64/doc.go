// Package b64 implements the standard Base64 encoding defined in RFC 4648
// Section 4 (alphabet A-Z a-z 0-9 + /, with '=' padding).
//
// Every operation comes in two shapes that share one code path:
//
//   - Encode and Decode allocate and return a correctly sized result.
//   - EncodeTo and DecodeTo write into a caller-supplied buffer sized with
//     EncodedLen and DecodedLen and perform no allocation.
//
// Decoding does not trim the output when the input is padded. DecodeTo always
// writes DecodedLen(len(src)) bytes, and the positions covered by '=' come out
// as zero bytes. Use PayloadLen to find the length of the original data.
//
// All functions are pure and safe for concurrent use.
//
// http://www.rfc-editor.org/rfc/rfc4648#section-4
package b64
