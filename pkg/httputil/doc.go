// Package httputil provides HTTP plumbing shared by the registry clients.
//
// # Transport
//
// [Transport] wraps an [http.RoundTripper] and reports every request to the
// registered [observability.HTTPHooks]. It also sets a User-Agent header
// when the request carries none:
//
//	rt := httputil.NewTransport(remote.DefaultTransport, "layershare/"+buildinfo.Version)
//	img, err := remote.Image(ref, remote.WithTransport(rt))
//
// Registry API paths contain repository names and digests only; query
// strings are not reported to hooks since they may carry tokens.
package httputil
