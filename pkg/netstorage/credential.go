package netstorage

import "log/slog"

// Credential is an upload account key: its name and its shared secret.
type Credential struct {
	name   string
	secret string
}

func NewCredential(name, secret string) Credential {
	return Credential{name: name, secret: secret}
}

func (c Credential) Name() string {
	return c.name
}

func (c Credential) Secret() string {
	return c.secret
}

// IsZero reports whether either half of the credential is missing.
func (c Credential) IsZero() bool {
	return c.name == "" || c.secret == ""
}

// String never includes the secret.
func (c Credential) String() string {
	return c.name + ":<redacted>"
}

func (c Credential) GoString() string {
	return "netstorage.Credential{name: " + c.name + ", secret: <redacted>}"
}

// LogValue keeps the secret out of structured logs.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(slog.String("name", c.name))
}
