// Package repositories implements SQLite persistence for client-side state.
//
// [LocalStorage] is a small durable key-value store (the local_storage table) that survives process restarts.
// The session store keeps its two entries there: the auth token and the serialized user summary.
//
// Writes that touch several keys run in one transaction, so a logout never leaves a token without its user or
// the other way round.
package repositories
