// Package normalisers provides implementations of the Normaliser interface
// for each supported signal source. Each normaliser knows how to map its
// source's raw payload shape into a canonical Signal.
//
// Normalisers are registered with the Registry at startup.
package normalisers
