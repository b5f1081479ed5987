// Package connectors provides implementations of the Connector interface
// for the supported signal sources. Each connector knows how to discover
// fresh items from one source (GitHub, arXiv, Hacker News) and hands them
// to the core as raw signals; admission and normalisation happen there.
package connectors
