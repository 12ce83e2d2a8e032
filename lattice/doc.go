// Package lattice constructs initial CSR topologies for simulations and
// tests: ring lattices, rectangular grids and random regular graphs.
//
// All constructors are deterministic: given the same parameters, and seed
// where one applies, they emit bit-identical graphs with symmetric,
// sorted, verifier-clean CSR storage.
package lattice
