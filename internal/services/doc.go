// package services talks to the upstream music catalog API.
//
// [Client] is a JSON GET client that retries transient failures (network errors, non-200 statuses,
// undecodable bodies) with capped exponential backoff and paces requests with a token bucket.
// Running out of attempts returns an error wrapping [shared.ErrRetriesExhausted].
//
// [CatalogService] layers the catalog endpoints on top of a [Client]:
//
//	GET /catalog/games:all                      all games, newest first
//	GET /catalog/games/{id}/relatedGames        related titles of a game
//	GET /catalog/games/{id}/relatedPlaylists    all/best/misc playlists of a game
//	GET /catalog/officialPlaylists/{id}         playlist contents
//	GET /catalog/gameGroups                     games grouped by release year
//	GET /catalog/tracks/{id}                    single track lookup
//	GET /catalog/resources:detectUpdates        recently updated tracks
//	GET /catalog/users/{id}/sections/home       curated home sections (bearer token)
//
// Every catalog request carries country and lang; playlist requests also carry the membership tier,
// media package type and SDK version the service requires.
package services
