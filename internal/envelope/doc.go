// Package envelope defines the container file written for every converted
// asset: a fixed header (magic, version, type tag) followed by one typed
// payload encoded through the codec.
//
// Encoding is deterministic. WriteFile renames a fully written temporary
// file into place, so a failed write never leaves a partial envelope.
package envelope
