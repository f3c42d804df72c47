// Package device defines audio endpoint identities and the device catalog.
//
// A Device is an immutable value keyed by its Name. Devices of the same Type
// are disambiguated by an index suffix ("USB 2"). The Catalog is the only
// source of valid Device values; it is built once from a type/count spec and
// never changes afterwards.
//
// # Catalog Files
//
// Catalog specs may be written in CUE and are validated against an embedded
// schema before use:
//
//	catalog: [
//	    {type: "Internal", count: 1},
//	    {type: "3.5mm", count: 1},
//	    {type: "USB", count: 3},
//	]
//
// Entry order is preserved and determines the order of Catalog.All().
package device
