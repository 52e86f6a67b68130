// Package resolve maps normalized artist keys to catalog identities.
//
// Resolution is lazy and layered: a per-run cache guarantees at most one
// lookup per key within a scan, the catalog store answers for artists seen
// on previous runs, and the metadata provider is consulted only on a store
// miss. Provider failures never abort a run; they surface as unresolved
// entries in the scan report while store failures remain fatal.
package resolve
