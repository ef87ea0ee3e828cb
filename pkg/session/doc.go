/*
Package session implements management of live experiment sessions.

It provides a registry of running staircase sessions keyed by generated IDs,
serializing access per session so the engine's single-writer contract holds
even when sessions are driven over HTTP or MCP.
*/
package session
