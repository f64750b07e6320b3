// Package todo defines the task list and its stored encoding.
//
// The list is stored as a single JSON array, in insertion order:
//
//	[
//	  {"id": "0b6c3f0e-3c1a-4b8e-9a39-5f3f0c2d8a11", "text": "Buy milk", "completed": false},
//	  {"id": "5d7e2b44-9f0b-4d6f-8f0e-2a4c1b7e6d90", "text": "Call mom", "completed": true}
//	]
//
// # Validation
//
// Decode checks stored data in two passes:
//
// 1. JSON Schema validation against the embedded schema.json:
//   - The document must be an array of objects
//   - Every object needs a non-empty string "id", a string "text" and a
//     boolean "completed"
//   - Extra fields are tolerated and dropped
//
// 2. Structural checks the schema cannot express:
//   - No two tasks share an id
//
// There is no version field. Data that fails either pass is rejected as a
// whole; callers treat that the same as an empty slot.
//
// # Mutation
//
// List helpers never modify their receiver. Each returns a fresh slice, so a
// list handed to another goroutine stays stable.
package todo
