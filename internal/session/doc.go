// Package session owns the client's credentials and the guard that gates protected views on them.
//
// The [Store] keeps the in-memory [models.Session] and mirrors it to durable storage under two keys,
// "token" and "user". Persistence is asymmetric: [Store.Restore] loads credentials automatically at startup,
// while [Store.Update] only touches memory and [Store.SaveCredentials] is the explicit save run at login.
//
// The [Guard] starts in [Checking] and moves to [Resolved] exactly once, when the store finishes restoring.
// No allow/deny decision is made before that point.
package session
