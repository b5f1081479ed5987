// Package arxiv fetches recent paper listings from the arXiv Atom API
// as raw signals.
package arxiv
