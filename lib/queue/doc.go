// Package queue provides the queues used by the xPeer client.
//
// The package contains:
//   - TaskQueue: A single-flight FIFO executor. Exactly one task runs at a time, new tasks
//     never preempt a running one and the next task starts as soon as the running one
//     returns. Stop/Continue pause and resume dequeuing without discarding work.
//   - MPSC: An unbounded lock-free multi-producer single-consumer queue with a channel based
//     consumer side. The connection buffers outbound frames in it until the transport is ready.
//
// Guarantees of the MPSC queue:
//
//   - Lock-Free writes: producers only use atomic operations, the mutex guards the consumer wakeup
//   - Unbounded Size: the queue grows as needed, limited only by available memory
//   - Small Footprint: one node (value and next pointer) per queued value
//   - Per-Producer Order: values pushed by one goroutine are delivered in push order. Across
//     producers the order is decided by which Push completes first, not which one started first.
//   - Single Consumer: exactly one goroutine reads from Recv()
//
// Every correlated exchange of the client (ping, direct send, virtual peer operations)
// runs as one TaskQueue task, which is what guarantees that at most one exchange is in
// flight per client.
package queue
