// Package pkg provides the libraries behind the plantuml command.
//
// # Overview
//
// A PlantUML server renders a diagram from a URL that carries the diagram
// source, compressed and encoded into a compact token. The pkg directory is
// organized around that round trip:
//
//  1. [codec] - Text to token and back (raw deflate plus a URL-safe 6-bit alphabet)
//  2. [client] - HTTP transport, authentication, and per-file processing
//  3. [cache] - Rendered image storage (file, Redis, or none)
//  4. [errors] - Error codes shared by every layer
//  5. [observability] - Hooks for tracing HTTP and cache activity
//
// # Architecture
//
// The data flow for one diagram file:
//
//	diagram.puml
//	     ↓
//	[codec] package (deflate + encode → token)
//	     ↓
//	[client] package (GET <server>/<token>, cached by [cache])
//	     ↓
//	diagram.png, or diagram_error.html when the server rejects it
//
// # Quick Start
//
//	cl, err := client.New(ctx, client.Config{BaseURL: client.DefaultBaseURL})
//	if err != nil {
//	    return err
//	}
//	res, err := cl.ProcessFile(ctx, "diagram.puml", client.FileOptions{})
//	if err != nil {
//	    return err // connection or file system failure
//	}
//	if !res.OK {
//	    fmt.Println("server error page saved to", res.ErrorFile)
//	}
//
// [codec]: github.com/matzehuels/plantuml/pkg/codec
// [client]: github.com/matzehuels/plantuml/pkg/client
// [cache]: github.com/matzehuels/plantuml/pkg/cache
// [errors]: github.com/matzehuels/plantuml/pkg/errors
// [observability]: github.com/matzehuels/plantuml/pkg/observability
package pkg
