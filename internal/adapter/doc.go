// Package adapter exposes the declarative query surface over the term
// store.
//
// Execute runs a queryir.Select in three shapes:
//
//	no limit            fetch every match, order, return
//	limit, no ordering  the limit is pushed into the store's select
//	limit and ordering  fetch every match, order, then truncate
//
// The last shape cannot use the store's limit because the store stops in
// key order, not in the requested order.
//
// Insert, Update, Delete and the traversal operations bypass the
// translator and go straight to the gateway. Inserting a record with a
// null key into a table with an autogenerated key draws the key first:
// the table counter for "sequence" keys, a KeyGenerator for "uuid" keys.
//
// Every table name is resolved through the schema registry. A name the
// registry does not know is a deployment error and halts through
// gateway.Halt.
package adapter
