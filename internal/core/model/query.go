package model

import "strings"

// Query is a single user question about an entity (company name or ticker).
type Query struct {
	Text   string `json:"question"`
	Entity string `json:"entity"`
}

// MemoryEntry is a previously answered question stored under an entity key.
type MemoryEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MemoryKey normalizes an entity into the key used by the memory store.
func MemoryKey(entity string) string {
	return strings.ToUpper(strings.TrimSpace(entity))
}
