// Package dyntopo evolves a large sparse weighted lattice in place:
// Metropolis–Hastings rewiring proposals, threshold-driven edge death,
// exact fixed-point conservation of dying-edge energy, and a verified
// stream-compaction rebuild of the CSR topology.
//
// 🚀 What is dyntopo?
//
//	A concurrent topology-evolution engine that brings together:
//		• CSR storage: symmetric compressed sparse rows, binary-search lookups
//		• Proposal kernels: deterministic per-worker MCMC add/delete streams
//		• Top-K protection: blocked selection with an exact quickselect fallback
//		• Conservation: saturating Q8.24 fixed-point transfer with a global audit
//		• Compaction: prefix-sum scatter into a fresh, verified CSR generation
//		• Builders: ring, grid and random-regular lattices for seeding and tests
//
// Everything is organized under flat subpackages:
//
//	csr/        — the Graph container, structural verifier, traversal helpers
//	fixedpoint/ — Q8.24 arithmetic, saturating atomic adds, audit accumulator
//	proposal/   — acceptance kernels, RNG streams, overflow-safe buffers
//	topk/       — highest-weight edge selection with fallback chain
//	conserve/   — dying-edge energy transfer into node masses
//	lattice/    — seed-topology builders
//	rewire/     — the orchestrator: mark, conserve, compact, verify, publish
//
// Quick start:
//
//	g, _ := lattice.Ring(1024, 0.5)
//	orch, _ := rewire.New(g, rewire.DefaultConfig())
//	masses := make([]int32, g.NodeCount())
//	newG, stats, err := orch.EvolveTopology(ctx, masses)
//
// EvolveTopology either publishes a new graph generation or keeps the
// previous one intact; it never leaves a half-rebuilt topology visible.
package dyntopo
