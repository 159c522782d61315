// Package loaders decodes raw source assets into in-memory descriptors.
//
// Every loader is synchronous and safe to call from many goroutines at once.
// Each descriptor has a Release method that drops the buffers and handles it
// holds; callers release a descriptor once they have encoded it.
package loaders
