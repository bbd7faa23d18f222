package netstorage

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a terminal RoundTripper that keeps every request it sees.
type recorder struct {
	requests []*http.Request
	status   int
	err      error
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func TestAuthenticationSignsActionRequests(t *testing.T) {
	rec := &recorder{}
	cred := NewCredential("upload-key", "secret-key")
	rt := Authentication(NewSigner(cred))(rec)

	req, err := http.NewRequest(http.MethodPut, "https://example-nsu.akamaihd.net/123456/dir/file%20name.txt", nil)
	require.NoError(t, err)
	req.Header.Set(ActionHeader, ActionUpload.Header())

	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Len(t, rec.requests, 1)

	signed := rec.requests[0]
	assert.NotSame(t, req, signed, "the caller's request is cloned")
	assert.Empty(t, req.Header.Get(AuthDataHeader))
	assert.NotEmpty(t, signed.Header.Get(AuthDataHeader))

	verifier := NewSigner(cred).
		WithPath(PathFromString("123456/dir/file%20name.txt")).
		WithActionHeader(ActionUpload.Header())
	assert.NoError(t, verifier.Verify(signed.Header.Get(AuthDataHeader), signed.Header.Get(AuthSignHeader)))
}

func TestAuthenticationPassesUnsignedRequests(t *testing.T) {
	rec := &recorder{}
	rt := Authentication(NewSigner(NewCredential("upload-key", "secret-key")))(rec)

	req, err := http.NewRequest(http.MethodGet, "https://static.example.com/file.txt", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Len(t, rec.requests, 1)
	assert.Same(t, req, rec.requests[0])
	assert.Empty(t, rec.requests[0].Header.Get(AuthDataHeader))
	assert.Empty(t, rec.requests[0].Header.Get(AuthSignHeader))
}

func TestAuthenticationMissingCredential(t *testing.T) {
	rec := &recorder{}
	rt := Authentication(NewSigner(Credential{}))(rec)

	req, err := http.NewRequest(http.MethodGet, "https://example-nsu.akamaihd.net/123456", nil)
	require.NoError(t, err)
	req.Header.Set(ActionHeader, ActionStat.Header())

	_, err = rt.RoundTrip(req)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Empty(t, rec.requests)
}

func TestAuthenticationPropagatesTransportErrors(t *testing.T) {
	boom := errors.New("connection reset")
	rt := Authentication(NewSigner(NewCredential("upload-key", "secret-key")))(&recorder{err: boom})

	req, err := http.NewRequest(http.MethodGet, "https://example-nsu.akamaihd.net/123456", nil)
	require.NoError(t, err)
	req.Header.Set(ActionHeader, ActionStat.Header())

	_, err = rt.RoundTrip(req)
	assert.ErrorIs(t, err, boom)
}
