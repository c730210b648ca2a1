/*
Package session keeps one document per editing session and serializes access to it.

Builders are single-threaded. The Manager hands each session its own Builder, created
through a ports.BuilderFactory, and runs every call against it under a per-session
lock, so HTTP and MCP clients editing the same session never interleave mutations.
*/
package session
