// Package sim provides the core of the sensor graph pipeline: it turns a
// static road network and a live stream of per-sensor telemetry into a
// sensor graph and fixed-capacity feature grids.
//
// # Reading Guide
//
// Start with these files to understand the pipeline:
//   - translation.go: sensor id ↔ dense index bijection, the canonical order
//   - graph_builder.go: cost matrix, binary adjacency and edge lists
//   - feature_store.go: speed/occupancy/count grids and the smoothing pass
//   - scheduler.go: the stepped loop driving collection and observers
//
// # Architecture
//
// The sim package defines interfaces and the core components; boundary
// implementations live in sub-packages:
//   - sim/network/: in-memory Network with shortest paths over gonum graphs
//   - sim/replay/: Engine replaying recorded sensor telemetry
//   - sim/modules/: observer modules (progress, flow control, sensor series)
//   - sim/trace/: run event recording
//
// # Key Interfaces
//
//   - Engine: steps simulated time and serves telemetry (engine.go)
//   - Network: lanes, edges and fastest routes (engine.go)
//   - CostStrategy: pairwise sensor cost plus threshold (cost.go)
//   - Observer: periodic and post-run modules (observer.go)
//
// Everything is single-threaded. The engine and network are exclusive,
// sequentially accessed collaborators for the duration of a run.
package sim
