// Package existdb fronts an eXist-db XML document store via its REST
// interface and exposes document and collection lifecycle operations with a
// stable business-error vocabulary.
//
// # Layering
//
// Three layers, each with one job:
//
//   - Client: one authenticated HTTP request per call against a
//     path-addressed resource. Raw status and body out, no interpretation,
//     no retries.
//   - Repository: collection and document primitives (get, put, delete,
//     ensure-collection, delete-collection, exists, list, query) on top of
//     the Client. Owns the query envelope and listing parse. Passes non-2xx
//     statuses upward as *StatusError, except for the probes where "absent"
//     is an expected answer.
//   - Service: business rules — input validation, create-must-not-overwrite,
//     update-requires-existence — and the single point where transport
//     errors are translated into the fault taxonomy in errors.go.
//
// Control flows caller → Service → Repository → Client → store; errors flow
// back the same way, reinterpreted at each boundary.
//
// # Concurrency
//
// One connection-pooling http.Client is shared across all operations.
// Operations on different (collection, document) keys are independent and
// may run concurrently; there is no in-process shared mutable state and no
// application-level locking. Check-then-act sequences (create probe + write,
// collection probe + create) are not atomic — consistency under races is
// delegated to the store's last-write-wins behavior. Cancellation is honored
// at every network call via context; partially completed multi-step
// operations are not rolled back, so a cancelled put can leave a freshly
// created empty collection behind.
package existdb
