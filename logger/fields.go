package logger

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldSession   = "session_id"
	FieldGraph     = "graph_id"
	FieldNode      = "node_id"
	FieldEdge      = "edge_index"
	FieldNodes     = "nodes"
	FieldEdges     = "edges"
	FieldTick      = "tick"
	FieldAlpha     = "temperature"
	FieldFormat    = "format"
	FieldFile      = "file"
	FieldAddress   = "address"
	FieldError     = "error"
	FieldKind      = "kind"
)
