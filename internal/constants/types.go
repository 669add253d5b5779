package constants

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Tool names exposed over MCP.
const (
	ToolExecute     = "execute_go"
	ToolListHelpers = "list_helpers"
)

// HelpersResourceURI serves the helper catalog as an MCP resource.
const HelpersResourceURI = "dataiku://helpers"

// Build modes accepted by the DSS job API.
const (
	BuildModeRecursive            = "RECURSIVE_BUILD"
	BuildModeNonRecursiveForced   = "NON_RECURSIVE_FORCED_BUILD"
	BuildModeRecursiveForced      = "RECURSIVE_FORCED_BUILD"
	BuildModeRecursiveMissingOnly = "RECURSIVE_MISSING_ONLY_BUILD"
)

// DefaultUploadConnection is the managed filesystem connection used for uploads.
const DefaultUploadConnection = "filesystem_managed"
