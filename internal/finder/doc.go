// Package finder provides the HTTP client for the object finder service.
//
// # Overview
//
// The object finder service watches short videos of a user's living spaces and
// answers "where is my X" questions. All of that intelligence lives in the
// remote service; this package is the single point of contact with it. It
// validates input before anything is sent, tags requests for cache busting,
// and turns every failure into one error shape.
//
// # Architecture
//
//   - client.go: Client, Options and the typed operations
//   - middleware.go: the Doer/Middleware chain wrapped around http.Client
//   - errors.go: the Error type, its Kind taxonomy and body parsing
//   - validate.go: client-side input limits
//   - video.go: VideoFile and local file sniffing
//   - types.go: data structures mirroring the service API schema
//
// # Client Usage
//
//	client, err := finder.NewClient(finder.Options{
//		BaseURL: "http://localhost:8000",
//		Logger:  logger,
//	})
//	if err != nil {
//		return fmt.Errorf("init finder client: %w", err)
//	}
//
//	obj, err := client.TeachObject(ctx, "keys", "car keys, blue keychain")
//	result, err := client.Search(ctx, "where are my keys")
//
// # API Endpoints
//
//   - GET /health
//   - POST /api/upload (multipart field "file")
//   - GET /api/upload/status/{video_no}
//   - POST /api/objects/, GET /api/objects/, GET|DELETE /api/objects/{id}
//   - GET /api/objects/suggestions/common
//   - POST /api/search/, GET /api/search/history, GET /api/search/suggestions
//
// # Request Pipeline
//
// Every request passes through the same ordered middleware chain:
//
//	normalizeErrors → logRequests → cacheBust → defaultHeaders → http.Client
//
// cacheBust adds a "_t" query parameter holding a UUIDv7, so tokens increase
// with issue order. defaultHeaders sets Accept, User-Agent and a JSON
// Content-Type; the upload sets its own multipart Content-Type (with boundary)
// and is left untouched.
//
// Deadlines are applied per operation class on top of the caller's context:
// 30 seconds by default and 120 seconds for uploads.
//
// # Error Handling
//
// Every error returned by an operation is a *Error whose Kind is one of:
//
//   - InvalidInput: a client-side limit was violated; nothing was sent
//   - Timeout: the deadline elapsed before a response arrived
//   - NetworkError: no response was received (refused, DNS, reset, cancelled)
//   - ServerError: the service answered with a non-2xx status; Message comes
//     from the body's "message" or "detail" field when present
//   - UnknownError: anything else, such as a malformed success body
//
// Callers switch on finder.KindOf(err) or use errors.Is with the Err*
// sentinels, and never see transport-specific error values.
//
// Two operations shape errors further. CheckHealth reports every failure as
// "unable to connect to server". Search never returns transport or server
// failures; it returns a SearchResult with Found=false, the failure message,
// and the normalized error in SearchResult.Failure.
//
// # Thread Safety
//
// A Client holds only immutable configuration and is safe for concurrent use.
// Concurrent calls complete in no particular order.
//
// # Design Rationale
//
//   - No caching (every fetch is a fresh read of server state)
//   - No retries (callers decide whether to try again)
//   - No package-level client (construct one and pass it in)
package finder
