package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/viant/luacpg/store"
)

// Clock supplies the export timestamp; injected so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// LoadSchema compiles the CPG v1 schema document identified by url from
// its raw JSON text.
func LoadSchema(url string, schemaJSON []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Exporter maps a Store's contents onto the CPG v1 closed vocabulary and
// validates the result against the published schema before returning it.
// Validation failure is fatal for the run per the error-handling design.
type Exporter struct {
	schema *jsonschema.Schema
	clock  Clock
}

// New creates an Exporter validating against schema (nil skips
// validation, used only in tests that exercise shape without a schema
// fixture) and stamping timestamps from clock (nil uses the system
// clock).
func New(schema *jsonschema.Schema, clock Clock) *Exporter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Exporter{schema: schema, clock: clock}
}

// Export builds the full CPG v1 document for s: every AST node and edge
// (the directory tree and concrete syntax trees) plus every knowledge
// node and edge, under the given project id and declared languages.
func (e *Exporter) Export(s *store.Store, projectID string, languages []string) (*Document, error) {
	astNodes := s.AllASTNodes()
	knowledgeNodes := s.AllKnowledgeNodes()
	astEdges := s.AllASTEdges()
	knowledgeEdges := s.AllKnowledgeEdges()

	graphID, err := GraphID(projectID, len(astNodes)+len(knowledgeNodes), len(astEdges)+len(knowledgeEdges))
	if err != nil {
		return nil, fmt.Errorf("derive graph id: %w", err)
	}

	doc := &Document{
		MetaData: MetaData{
			SchemaVersion:     "v1",
			Languages:         languages,
			AnalysisTimestamp: e.clock.Now().UTC().Format(time.RFC3339),
			GraphID:           graphID,
			ProjectID:         projectID,
		},
	}

	fileOrDir := make(map[string]bool, len(astNodes))
	for _, n := range astNodes {
		fileOrDir[n.Key] = n.Kind == "file" || n.Kind == "dir"
		doc.Nodes = append(doc.Nodes, astNodeToExport(n, projectID))
	}
	for _, n := range knowledgeNodes {
		doc.Nodes = append(doc.Nodes, knowledgeNodeToExport(n, projectID))
	}

	for _, edge := range astEdges {
		doc.Edges = append(doc.Edges, Edge{
			ID:   fmt.Sprintf("%s:%s-%s", projectID, edge.From, edge.To),
			From: fmt.Sprintf("%s:%s", projectID, edge.From),
			To:   fmt.Sprintf("%s:%s", projectID, edge.To),
			Type: edgeType(edge.Relation, fileOrDir[edge.From], fileOrDir[edge.To]),
		})
	}
	for _, edge := range knowledgeEdges {
		doc.Edges = append(doc.Edges, Edge{
			ID:   fmt.Sprintf("%s:%s", projectID, edge.Key),
			From: fmt.Sprintf("%s:%s", projectID, edge.From),
			To:   fmt.Sprintf("%s:%s", projectID, edge.To),
			Type: edgeType(edge.Relation, false, false),
		})
	}

	if err := e.validate(doc); err != nil {
		return nil, fmt.Errorf("export failed schema validation: %w", err)
	}
	return doc, nil
}

func (e *Exporter) validate(doc *Document) error {
	if e.schema == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal export document: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal export document for validation: %w", err)
	}
	return e.schema.Validate(v)
}

func astNodeToExport(n store.ASTNode, projectID string) Node {
	return Node{
		ID:         fmt.Sprintf("%s:%s", projectID, n.Key),
		Type:       nodeType(n.Kind),
		Properties: map[string]any{"kind": n.Kind, "code": n.Text},
		Location:   &Location{FilePath: n.Path, StartByte: n.StartByte, EndByte: n.EndByte},
	}
}

func knowledgeNodeToExport(n store.KnowledgeNode, projectID string) Node {
	props := map[string]any{"kind": n.Kind}
	if n.Text != "" {
		props["name"] = n.Text
	}
	for k, v := range n.Properties {
		props[k] = v
	}
	return Node{
		ID:         fmt.Sprintf("%s:%s", projectID, n.Key),
		Type:       nodeType(n.Kind),
		Properties: props,
		Location:   &Location{FilePath: n.Path, StartByte: n.StartByte, EndByte: n.EndByte},
	}
}
