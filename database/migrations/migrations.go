// Package migrations contains the schema migrations. Each file registers
// itself from init(); cmd/groupcart imports this package for the side
// effect so every migration is known at CLI startup.
package migrations
