// Package blockwise serves a Thing Description in fixed-size blocks.
//
// A block is addressed by number and size exponent (SZX); block n of size
// 16<<SZX covers bytes [n*size, (n+1)*size) of the rendered document and maps
// directly onto a tdjson.Slicer window. Every block is rendered from scratch,
// so the server keeps no document buffer. Because the model may change
// between two requests, each response carries an ETag (the xxh3 digest of
// the whole document) and a Tracker refuses blocks whose document no longer
// matches the one the transfer started with.
package blockwise
