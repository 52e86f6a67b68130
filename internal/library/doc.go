// Package library walks the on-disk music tree. The layout is fixed at two
// levels, artist folders containing album folders; everything deeper belongs
// to the artists' rippers, not to us.
package library
