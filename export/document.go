// Package export maps the Graph Store's internal vocabulary onto the CPG
// v1 schema's closed vocabulary, stamps run metadata, and validates the
// result against the published schema before it ever reaches a
// downstream consumer.
package export

// Location gives a node's path and byte span. FilePath is the node's own
// Path, which only file and directory AST nodes carry; for every other
// node it is empty and omitted. Every exported node carries a Location,
// even when its fields are zero, keeping every node's shape uniform.
type Location struct {
	FilePath  string `json:"file_path,omitempty"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

// Node is one exported graph node: an id of the form
// "<project_id>:<internal_key>", a closed-vocabulary type, a free-form
// properties bag, and its origin.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Location   *Location      `json:"location,omitempty"`
}

// Edge is one exported directed relation between two node ids.
type Edge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// MetaData wraps every exported document with run-level provenance.
type MetaData struct {
	SchemaVersion     string   `json:"schema_version"`
	Languages         []string `json:"languages"`
	AnalysisTimestamp string   `json:"analysis_timestamp"`
	GraphID           string   `json:"graph_id"`
	ProjectID         string   `json:"project_id"`
}

// Document is the full CPG v1 export.
type Document struct {
	MetaData MetaData `json:"meta_data"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
}
