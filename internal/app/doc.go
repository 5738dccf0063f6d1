// Package app provides the application service layer.
//
// Service runs the display use cases (show preset, scroll message, render
// current frame) and flags changes on the Coalescer. The Coalescer converts
// those flags into at most one broadcast per category per tick.
package app
