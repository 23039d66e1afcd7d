// Package mcpserver exposes the rule engine over the Model Context
// Protocol.
//
// It is the single transport adapter in front of the engine: each MCP
// tool maps 1:1 onto a repository or engine operation, and handlers
// serialize the engine's plain result structures to JSON text content.
// Domain failures (unknown rule ids, invalid patterns) become tool
// results with IsError set, never protocol-level errors.
package mcpserver
