// Package document splits raw corpus files into a TOML metadata block and a
// markdown body and decodes the block into models.Metadata.
package document

import "strings"

// Delimiter brackets the metadata block at the top of a document.
const Delimiter = "+++"

// Split returns the metadata block and the body of raw. With fewer than two
// delimiters the block is empty and raw is returned whole as the body.
// Anything before the first delimiter or after a third one is dropped.
func Split(raw string) (block, body string) {
	parts := strings.SplitN(raw, Delimiter, 4)
	if len(parts) < 3 {
		return "", raw
	}
	return parts[1], parts[2]
}
