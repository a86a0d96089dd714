// Package reqflow is an HTTP client that publishes a request lifecycle and
// lets plugins observe it:
//
//   - PRE_REQUEST with the outbound *http.Request
//   - POST_REQUEST_SUCCESS or POST_REQUEST_ERROR with the *Response
//   - POST_REQUEST last, exactly once per request
//
// Events travel over a topic bus (package topic). A Registry holds named
// plugins; each plugin implements whichever hook interfaces it cares about
// (PreRequestHook, PostRequestSuccessHook, PostRequestErrorHook,
// PostRequestHook). A hook returning Stop skips the remaining plugins for
// that one dispatch only.
//
// Responses can be turned into application values with the mapping
// package, which extracts parts of a JSON body by JSONPath and builds one
// instance or a list of instances per key.
//
// Typical usage:
//
//	client := reqflow.New(
//	    reqflow.WithTimeout(10*time.Second),
//	    reqflow.WithPlugin("log", reqflow.NewLoggingPlugin(zlog.Logger)),
//	)
//	users := mapping.MustNew(mapping.Spec{
//	    "users": {Path: "$.data[*]", Shape: mapping.Collection, New: mapping.Into[User]()},
//	})
//	result, err := client.GetMapped(ctx, "https://api.example.com/users", users)
//
// Hook panics never escape Do: they are recovered, the remaining lifecycle
// still runs, and Do returns a *ClientError of type ErrorTypeHook.
package reqflow
