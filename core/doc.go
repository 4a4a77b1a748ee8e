// Package core provides the Tessera SDK client: HTTP transport with typed
// error classification and bounded retries, response envelope decoding, and
// a single-pass parser for the platform's server-sent event stream.
//
// # Client
//
// The primary entry point is [Client], created with an API key and base URL:
//
//	client, err := core.NewClient(os.Getenv("TESSERA_API_KEY"),
//	    "https://api.tessera.ai/v1",
//	    core.WithUserID("user-42"),
//	    core.WithMaxRetries(3),
//	)
//
// A Client exposes three execute operations. [Client.Do] returns the
// single-resource {data, meta} envelope, [Client.DoList] the collection
// envelope with pagination facts, and [Client.DoRaw] the unopened response
// for streaming and binary payloads. All three run the same auth and retry
// pipeline. Resource wrapper packages (notebooks, knowledge, skills,
// billing) are thin callers of these operations and carry no transport
// logic of their own.
//
// # Errors
//
// Every failure surfaces as an [*APIError] carrying a closed [ErrorKind]
// discriminant, the machine-readable code, the HTTP status, and the server's
// request identifier for support correlation. Sentinel errors support
// errors.Is checks:
//
//	if errors.Is(err, core.ErrRateLimited) {
//	    // budget exhausted on a 429
//	}
//
// Rate-limit (429) and server (5xx) responses, and network-level failures,
// are retried with exponential backoff and jitter up to the configured
// budget. Timeouts are final and never retried.
//
// # Streaming
//
// Streaming endpoints return SSE over POST. Wrap the raw response in a
// [Stream] and pull events:
//
//	resp, err := client.DoRaw(ctx, req)
//	stream, err := core.NewStream(resp)
//	for stream.Next() {
//	    ev := stream.Current()
//	    fmt.Print(ev.DeltaContent())
//	}
//	err = stream.Err()
//
// [Stream.Subscribe] dispatches events to callbacks and returns the final
// completion payload; [Stream.CollectText] concatenates all delta content.
// A Stream is single-pass: consuming it a second time fails with
// [ErrStreamConsumed].
package core
