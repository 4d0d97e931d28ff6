// Package gateway is the only layer that touches the store's native
// activity and abort machinery.
//
// Run executes a body under an execution context (Dirty or Transaction)
// and normalizes every way the body can end into (result, error):
//
//   - success: the body's value and nil
//   - the body returned an error: that error (gateway errors pass unchanged)
//   - the store aborted (store.Abort, returned or panicked): *Error with
//     ErrCodeAborted and the native reason
//   - something else panicked inside the body: *Error with ErrCodeAborted
//     and a Raised reason
//
// One outcome is deliberately not normalized. An abort saying that a
// referenced table does not exist means the deployment and the schema
// disagree; Run logs it and panics with *FatalError so the process halts
// loudly instead of serving requests against a broken configuration.
//
// Inside the body, a Session offers the record operations (Insert, Get,
// Update, Delete, Select, Count, traversal). Gateway.NextSequence is
// usable from anywhere, inside a body or not.
package gateway
