// Package tdjson renders a model.Thing as a JSON Thing Description.
//
// # Streaming
//
// The serializer never builds the document in memory. It walks the model
// depth first and writes each token as it goes. A Slicer restricts what
// reaches the destination to a byte window, so a large document can be
// served in blocks: every request re-runs the full traversal and only the
// requested window is written.
//
//	s := tdjson.NewWindow(0, 512)
//	for {
//	    if err := tdjson.Serialize(w, thing, s); err != nil {
//	        return err
//	    }
//	    if !s.More() {
//	        break
//	    }
//	    s = s.Next()
//	}
//
// The model must not change between the first and last block of one
// transfer; package blockwise detects such changes with an ETag.
//
// # Extensions
//
// Forms may carry model.Extension values. After the standard form fields
// the serializer hands each renderer the windowed writer, so bytes written
// by extensions are sliced like every other byte.
package tdjson
