package staircase

// Version is the library version, consumed by the CLI and the MCP server.
var Version = "0.3.0"
