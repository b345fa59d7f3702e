// Package client talks to a PlantUML server.
//
// A [Client] is built once from an explicit [Config] and reused for every
// diagram; it owns the HTTP client, the authentication state and an optional
// image cache. There is no package-level state.
//
// # Rendering
//
// [Client.Render] encodes the diagram with package codec, issues a GET for
// BaseURL+token and returns the image bytes. Failures are classified with the
// codes from package errors:
//
//   - CONNECTION_ERROR: the server could not be reached
//   - HTTP_ERROR: the server answered with a non-2xx status; the
//     [errors.HTTPError] carries the response body
//
// # Files
//
// [Client.ProcessFile] renders a diagram source file to an image file next
// to it (or in a chosen directory). An HTTP failure is not returned as an
// error: the server's error page is written to an error file and the
// returned [Result] reports OK=false, so batches keep going.
//
// # Authentication
//
// Servers behind basic auth are handled with [BasicAuth]. Servers behind a
// login form are handled with [FormAuth]: [New] posts the form once and the
// session cookies it receives are sent with every later request.
package client
