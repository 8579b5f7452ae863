package logger

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldTrigger   = "trigger"
	FieldCommand   = "command"
	FieldIndex     = "index"
	FieldTool      = "tool"
	FieldFromTool  = "from_tool"
	FieldPocket    = "pocket"
	FieldUnits     = "units"
	FieldLines     = "lines"
	FieldPath      = "path"
	FieldCount     = "count"
	FieldMarker    = "marker"
	FieldError     = "error"
)
