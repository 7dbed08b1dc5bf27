// Package httpbinding serves a Thing over HTTP using echo.
//
// The Thing Description is published at /.well-known/wot. A single bytes
// Range is honored by rendering only the requested window, and every
// response carries the document ETag so clients can stitch ranges with
// If-Range or If-Match. Properties are read with GET and written with PUT
// on /properties/{key}; actions are invoked with POST on /actions/{key}.
//
// ApplyDefaultMethods annotates forms with the htv:methodName extension
// matching these routes.
package httpbinding
