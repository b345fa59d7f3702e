// Package codec converts PlantUML diagram source into the URL token understood
// by PlantUML servers, and back.
//
// # Encoding
//
// A token is built in two steps:
//
//  1. [Compress] deflates the UTF-8 source at the default compression level and
//     strips the 2-byte zlib header and 4-byte Adler-32 trailer, leaving the raw
//     deflate stream the server expects.
//  2. [Encode] packs the compressed bytes 3 at a time into four 6-bit symbols
//     drawn from the PlantUML alphabet:
//
//     0-9   -> '0'..'9'
//     10-35 -> 'A'..'Z'
//     36-61 -> 'a'..'z'
//     62    -> '-'
//     63    -> '_'
//
// The alphabet looks like URL-safe base64 but its ordering differs, so the
// standard library encodings cannot be used directly. [EncodeTranslate] derives
// the same output from standard base64 by character translation; both routines
// must agree for every input.
//
// # Usage
//
//	token, err := codec.Token("@startuml\nactor Bob\n@enduml")
//	url := "http://www.plantuml.com/plantuml/img/" + token
//
// [DecodeText] reverses the process, which is handy for inspecting URLs found
// in documentation.
package codec
