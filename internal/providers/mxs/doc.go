// Package mxs implements providers.Provider for the mxs-style comic sites:
// the title page carries the name in <h1> and chapters under
// ul#detail-list-select, chapter pages lazy-load images through data-original.
package mxs
