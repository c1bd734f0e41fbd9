// Package codec implements the reversible at-rest encoding of message bodies.
//
// The encoding provides no confidentiality. Anyone with read access to the
// store can reverse it.
package codec

import "encoding/base64"

// Encode returns the at-rest form of text.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode returns the text behind an at-rest body. Bodies that are not valid
// encodings, such as rows written before encoding was introduced, are
// returned unchanged.
func Decode(body string) string {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return body
	}
	return string(raw)
}
