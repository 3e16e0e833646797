// Package pexels is a minimal client for the Pexels video search API.
//
// Only the two calls the footage stage needs are implemented: Search against
// /videos/search and Download of a rendition link. Both authenticate with the
// raw API key in the Authorization header.
package pexels
