package driver

var IndexQueries = []string{
	"CREATE INDEX ON :MemoryKey(key);",
	"CREATE INDEX ON :MemoryEntry(uuid);",
	"CREATE INDEX ON :MemoryEntry(seq);",
}

const (
	// AppendMemoryEntryQuery bumps the key's counter and hangs a new entry off
	// it in one statement, so seq is dense and ordered per key.
	AppendMemoryEntryQuery = `
		MERGE (k:MemoryKey {key: $key})
		ON CREATE SET k.count = 0, k.created_at = $created_at
		SET k.count = k.count + 1
		WITH k
		CREATE (k)-[:HAS_ENTRY]->(e:MemoryEntry {
			uuid: $uuid,
			seq: k.count,
			question: $question,
			answer: $answer,
			created_at: $created_at
		})
		RETURN e.seq AS seq
	`

	ReadMemoryEntriesQuery = `
		MATCH (k:MemoryKey {key: $key})-[:HAS_ENTRY]->(e:MemoryEntry)
		RETURN e.question AS question, e.answer AS answer
		ORDER BY e.seq ASC
	`
)
