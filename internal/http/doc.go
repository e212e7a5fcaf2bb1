// Package http issues single load-test requests and classifies their failures.
//
// A Client sends one request per Send call and reports the observed latency
// along with the status code. Transport failures are returned as *RequestError
// carrying one of the ErrorKind values; HTTP error statuses are not errors at
// this level, callers decide how to account for them.
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithTimeout(5*time.Second),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//
//	res, err := client.Send(ctx, "https://api.example.com/health")
//	if err != nil {
//	    fmt.Println(http.Classify(err), res.Latency)
//	}
package http
