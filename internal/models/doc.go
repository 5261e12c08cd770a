// Package models defines the data exchanged with the filmhub API and held by the client.
//
// Remote resources are read-only snapshots:
//   - [Movie] : catalog entry keyed by its external id
//   - [Rating] : a user's 1-10 score for one movie
//   - [Catalog] : ordered category → movies mapping as served by /movies/
//
// Client-held state:
//   - [UserSummary] : minimal identity returned at login
//   - [Session] : token plus user, owned by the session store
//
// Catalog preserves the server's category order so that [Catalog.Flatten] is deterministic:
// movies listed under several categories appear once, at their first position.
package models
