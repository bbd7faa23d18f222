package netstorage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Authentication header names.
const (
	AuthDataHeader = "X-Akamai-ACS-Auth-Data"
	AuthSignHeader = "X-Akamai-ACS-Auth-Sign"
)

const (
	signatureVersion = 5
	reservedField    = "0.0.0.0"
	nonceLength      = 32
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Signer computes the ACS authentication headers for one request. It is a
// value: every With method returns a copy, so one template can be shared
// by concurrent requests.
type Signer struct {
	credential   Credential
	path         Path
	actionHeader string
	timestamp    time.Time
	nonce        string
}

// NewSigner returns a template Signer bound to credential.
func NewSigner(credential Credential) Signer {
	return Signer{credential: credential}
}

func (s Signer) WithCredential(credential Credential) Signer {
	s.credential = credential
	return s
}

// WithPath binds the canonical request path, without the leading slash.
func (s Signer) WithPath(path Path) Signer {
	s.path = path
	return s
}

// WithActionHeader binds the raw X-Akamai-ACS-Action value.
func (s Signer) WithActionHeader(header string) Signer {
	s.actionHeader = header
	return s
}

// WithAction binds the header rendered from action and params.
func (s Signer) WithAction(action Action, params ...ActionParam) Signer {
	return s.WithActionHeader(action.Header(params...))
}

// WithTime fixes the request timestamp. The zero time means "now".
func (s Signer) WithTime(t time.Time) Signer {
	s.timestamp = t
	return s
}

// WithNonce fixes the nonce. An empty nonce is replaced by a fresh one.
func (s Signer) WithNonce(nonce string) Signer {
	s.nonce = nonce
	return s
}

// AuthHeaders holds the two computed header values.
type AuthHeaders struct {
	Data string
	Sign string
}

// Apply sets both headers on h.
func (a AuthHeaders) Apply(h http.Header) {
	h.Set(AuthDataHeader, a.Data)
	h.Set(AuthSignHeader, a.Sign)
}

// Headers computes the authentication headers. A missing timestamp or nonce
// is filled in for this call only; the Signer itself is unchanged.
func (s Signer) Headers() (AuthHeaders, error) {
	if s.credential.IsZero() {
		return AuthHeaders{}, ErrMissingCredential
	}

	timestamp := s.timestamp
	if timestamp.IsZero() {
		timestamp = nowFunc()
	}
	nonce := s.nonce
	if nonce == "" {
		nonce = newNonce()
	}

	data := strings.Join([]string{
		strconv.Itoa(signatureVersion),
		reservedField,
		reservedField,
		strconv.FormatInt(timestamp.Unix(), 10),
		nonce,
		s.credential.Name(),
	}, ", ")

	return AuthHeaders{Data: data, Sign: s.sign(data)}, nil
}

// Verify checks a received pair of header values against the bound path,
// action header and credential. The timestamp and nonce are taken from
// authData as sent.
func (s Signer) Verify(authData, signature string) error {
	if s.credential.IsZero() {
		return ErrMissingCredential
	}
	fields := strings.Split(authData, ", ")
	if len(fields) != 6 {
		return fmt.Errorf("%w: auth data has %d fields", ErrInvalidSignature, len(fields))
	}
	if fields[5] != s.credential.Name() {
		return fmt.Errorf("%w: unknown key name %q", ErrInvalidSignature, fields[5])
	}
	expected := s.sign(authData)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}

// signingString is the exact byte sequence covered by the HMAC.
func (s Signer) signingString(authData string) string {
	var b strings.Builder
	b.WriteString(authData)
	b.WriteString("/")
	b.WriteString(s.path.String())
	b.WriteString("\n")
	b.WriteString("x-akamai-acs-action:")
	b.WriteString(strings.TrimSpace(s.actionHeader))
	b.WriteString("\n")
	return b.String()
}

func (s Signer) sign(authData string) string {
	h := hmac.New(sha256.New, []byte(s.credential.Secret()))
	h.Write([]byte(s.signingString(authData)))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// newNonce returns 32 random hex characters.
func newNonce() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:nonceLength]
}
