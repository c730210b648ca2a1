/*
Package ports defines the interfaces between the builder core and its adapters.

These interfaces decouple the document engine from the transports that drive it and
the channels that carry its snapshots to the view layer.

# Key Interfaces

  - Builder: The operation surface used by front ends (HTTP, MCP, scripted replay).
  - SnapshotPublisher: Notifies the view layer of every new forest version.
  - SnapshotSubscriber: Streams published snapshots for one session.
*/
package ports
