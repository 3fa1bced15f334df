// Package api exposes library operations as transport-friendly DTOs.
//
// LibraryService sits between the HTTP surface (and the CLI, which consumes
// the same endpoints) and the store/scanner pair. It owns DTO conversion so
// persistence types never leak into payloads.
package api
