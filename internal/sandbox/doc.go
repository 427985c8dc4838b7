// Package sandbox serves an in-memory copy of the megaverse API.
//
// Ownership boundary:
// - Store owns every candidate universe and the shared goal grid.
// - Server owns the gin router, request throttling and the HTTP lifecycle.
// - Request bodies are validated here before the store sees them.
package sandbox
