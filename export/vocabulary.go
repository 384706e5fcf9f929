package export

import "strings"

// nodeTypeTable holds the exact-match entries of the node-kind -> node-type
// vocabulary; kinds containing "function" or "variable" are matched by
// substring below, covering function/local_function/global_function and
// variable_declaration. local_var and global_var contain neither substring
// and map to UNKNOWN.
var nodeTypeTable = map[string]string{
	"file":            "FILE",
	"dir":             "DIRECTORY",
	"parameter":       "VARIABLE",
	"identifier":      "IDENTIFIER",
	"string":          "LITERAL",
	"number":          "LITERAL",
	"boolean":         "LITERAL",
	"nil":             "LITERAL",
	"function_call":   "CALL",
	"if_statement":    "CONTROL_STRUCTURE",
	"while_statement":  "CONTROL_STRUCTURE",
	"for_statement":   "CONTROL_STRUCTURE",
	"repeat_statement": "CONTROL_STRUCTURE",
	"block":           "BLOCK",
	"do_statement":    "BLOCK",
	"comment":         "COMMENT",
	"module":          "NAMESPACE",
}

// nodeType maps an internal node kind onto the schema's closed vocabulary.
func nodeType(kind string) string {
	if t, ok := nodeTypeTable[kind]; ok {
		return t
	}
	switch {
	case strings.Contains(kind, "function"):
		return "FUNCTION"
	case strings.Contains(kind, "variable"):
		return "VARIABLE"
	default:
		return "UNKNOWN"
	}
}

var edgeTypeTable = map[string]string{
	"contains":      "CONTAINS",
	"executes":      "FLOWS_TO",
	"calls":         "CALLS",
	"defines":       "DEFINES",
	"declares":      "DECLARES",
	"refers_to":     "REFERS_TO",
	"has_parameter": "HAS_PARAMETER",
	"has_block":     "AST_CHILD",
	"imports":       "IMPORTS",
	"requires":      "IMPORTS",
}

// edgeType maps an internal edge relation onto the schema's closed
// vocabulary. child_of is special-cased: between two file/dir nodes it is
// a directory-structure containment (CONTAINS), otherwise it is plain
// syntax-tree parentage (AST_CHILD).
func edgeType(relation string, fromIsFileOrDir, toIsFileOrDir bool) string {
	if relation == "child_of" {
		if fromIsFileOrDir && toIsFileOrDir {
			return "CONTAINS"
		}
		return "AST_CHILD"
	}
	if t, ok := edgeTypeTable[relation]; ok {
		return t
	}
	return "AST_CHILD"
}
