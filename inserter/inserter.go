// Package inserter populates the AST layer of the Graph Store: the
// directory hierarchy (files and directories) and, per file, the concrete
// syntax tree produced by the parser.
package inserter

import (
	"fmt"

	lua "github.com/viant/luacpg/ast"
	"github.com/viant/luacpg/store"
)

// DirItem is one entry from the directory walker: a file or directory with
// its path and, when not the root, its parent's path.
type DirItem struct {
	Name       string
	Path       string
	Kind       string // "file" or "dir"
	ParentPath string
	HasParent  bool
}

// Inserter writes into a single Store across the lifetime of one project
// run.
type Inserter struct {
	store *store.Store
}

// New creates an Inserter writing into s.
func New(s *store.Store) *Inserter {
	return &Inserter{store: s}
}

// InsertDirectory performs the two-pass directory structure insertion:
// pass one creates a node per item, pass two emits child_of edges between
// items whose parent path is known.
func (i *Inserter) InsertDirectory(items []DirItem) error {
	for _, item := range items {
		node := store.ASTNode{
			Key:  i.store.NextID(),
			Kind: item.Kind,
			Text: item.Name,
			Path: item.Path,
		}
		if item.HasParent {
			node.ParentPath = item.ParentPath
		}
		if err := i.store.InsertASTNode(node); err != nil {
			return fmt.Errorf("insert directory node %s: %w", item.Path, err)
		}
	}

	for _, item := range items {
		if !item.HasParent {
			continue
		}
		childKey, ok := i.store.IDFromPath(item.Path)
		if !ok {
			continue
		}
		parentKey, ok := i.store.IDFromPath(item.ParentPath)
		if !ok {
			continue
		}
		i.store.InsertASTEdge(store.ASTEdge{From: parentKey, To: childKey, Relation: "child_of"})
	}
	return nil
}

// InsertSyntaxTree walks root depth-first pre-order, inserting one AST
// node per syntax-tree node. The root is additionally linked from the
// file node found via the path index, connecting the file layer to the
// code layer.
func (i *Inserter) InsertSyntaxTree(root lua.Node, filePath string) error {
	rootKey, err := i.insertNode(root, filePath)
	if err != nil {
		return err
	}

	if fileKey, ok := i.store.IDFromPath(filePath); ok {
		i.store.InsertASTEdge(store.ASTEdge{From: fileKey, To: rootKey, Relation: "child_of"})
	}
	return nil
}

func (i *Inserter) insertNode(node lua.Node, filePath string) (string, error) {
	key := i.store.NextID()
	astNode := store.ASTNode{
		Key:       key,
		Kind:      node.Kind(),
		Text:      node.Text(),
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
		GrammarID: node.ID(),
	}
	if err := i.store.InsertASTNode(astNode); err != nil {
		return "", fmt.Errorf("insert syntax node in %s: %w", filePath, err)
	}

	for _, child := range lua.Children(node) {
		childKey, err := i.insertNode(child, filePath)
		if err != nil {
			return "", err
		}
		i.store.InsertASTEdge(store.ASTEdge{From: key, To: childKey, Relation: "child_of"})
	}
	return key, nil
}
