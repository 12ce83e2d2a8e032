// Package rewire sequences one topology rebuild of the lattice: Monte-Carlo
// proposal collection, the low-weight deletion sweep with top-K protection,
// conservation transfer of dying-edge content, degree recomputation, CSR
// compaction and structural verification, followed by an atomic publish of
// the new graph.
//
// The Orchestrator owns exactly one live csr.Graph at a time. Phases run
// strictly in sequence; within a phase, work fans out over shards with the
// atomicity rules the lower packages provide (proposal slot allocation,
// scatter write counters, saturating mass accumulation). A rebuild that fails
// verification or strict conservation rolls back: the previous topology stays
// live and a typed error reaches the caller. There is no automatic retry;
// the caller simply invokes EvolveTopology again next cycle.
package rewire
