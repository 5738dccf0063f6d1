// Package domain defines the core domain types and interfaces.
//
// Frames, pixels and the colour palette live here together with the Display
// peripheral contract. No implementation code beyond small value helpers.
package domain
