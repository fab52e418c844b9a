// Package httpclient provides the resilient GET client used to talk to the
// upstream character/episode API.
//
// # Usage
//
//	client, err := httpclient.New(
//		"https://rickandmortyapi.com/api",
//		logger,
//		httpclient.WithTimeout(10*time.Second),
//		httpclient.WithMaxRetries(3),
//		httpclient.WithRetryDelay(time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var ep rickmorty.Episode
//	err = client.Get(ctx, "/episode/1", &ep)
//
// # Retries
//
// Each Get makes up to retries+1 strictly sequential attempts. The wait before
// the Nth retry is retryDelay * 2^(N-1). 4xx responses and configuration
// errors are returned after the first attempt. 5xx responses, transport
// errors and timeouts are retried.
//
// # Error Handling
//
// Raw failures are classified by Classify into an *Error carrying a Kind,
// an optional Status, a Code and the response payload:
//
//	var herr *httpclient.Error
//	if errors.As(err, &herr) && herr.IsNotFound() {
//		// treat as empty result
//	}
package httpclient
