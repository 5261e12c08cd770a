// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// What is shown follows the session guard:
//  1. While the session is being restored a neutral placeholder is rendered
//  2. Without a token, a login form (bubbles/textinput)
//  3. Otherwise the protected pages, switched with tab:
//     - [PageHome] : featured recommendations, all movies, search results and movie details
//     - [PageRatings] : the movies the user has rated, with their scores
//     - [PageRecommendations] : the full recommendation list
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Page state lives in the controllers; the model only asks them for snapshots.
//
// Keys: 1-9 and 0 (=10) rate the selected movie, / searches, esc backs out, L logs out, r reloads and q quits.
package ui
