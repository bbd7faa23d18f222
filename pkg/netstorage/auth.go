package netstorage

import (
	"fmt"
	"net/http"
)

// Authentication signs every request that carries an X-Akamai-ACS-Action
// header. Requests without one pass through untouched.
//
// The template is copied per request; it is never modified.
func Authentication(template Signer) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			action := r.Header.Get(ActionHeader)
			if action == "" {
				return next.RoundTrip(r)
			}

			signer := template.
				WithPath(PathFromString(r.URL.EscapedPath())).
				WithActionHeader(action)

			headers, err := signer.Headers()
			if err != nil {
				closeRequestBody(r)
				return nil, fmt.Errorf("sign request: %w", err)
			}

			signed := r.Clone(r.Context())
			headers.Apply(signed.Header)
			return next.RoundTrip(signed)
		})
	}
}

// closeRequestBody honours the RoundTripper contract of always closing the
// body, including on early errors.
func closeRequestBody(r *http.Request) {
	if r.Body != nil {
		r.Body.Close()
	}
}
