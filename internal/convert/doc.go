// Package convert turns source files into container envelopes.
//
// A Registry holds one {load, encode} capability pair per resource type in a
// table sized by resource.TypeCount. Convert loads the source, encodes the
// descriptor and writes the envelope atomically; loader resources are
// released whether or not the write succeeds. Failures are typed
// (*LoaderError, *WriteError) and Reason/Hint map them to log fields.
package convert
