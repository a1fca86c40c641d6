// Package driver provides graph store implementations for claimgraph.
//
// This package defines the GraphDriver interface and two implementations:
//   - Neo4jDriver: Neo4j (or any Bolt-compatible server) via the official Go driver
//   - MemoryDriver: an in-process graph used for development and tests
//
// # Usage
//
//	d, err := driver.NewNeo4jDriver(uri, username, password, database)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	id, err := d.CreateNode(ctx, types.ClaimLabel, props)
//
// # Identifiers
//
// CreateNode returns the store's identifier for the new node (an element id for
// Neo4j, "mem:N" for the memory driver). Edges are normally created between such
// identifiers with CreateEdge. CreateEdgeByMatch links every pair of nodes whose
// property equals a given value and exists for reconciling data across sessions.
//
// # Thread Safety
//
// All driver implementations are safe for concurrent use from multiple goroutines.
// Each operation runs in its own session.
package driver
