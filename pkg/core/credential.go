package core

// Credential is the login identifier and secret. It is never persisted.
type Credential struct {
	Identifier string
	Secret     string
}

// IsComplete reports whether both parts are set.
func (c Credential) IsComplete() bool {
	return c.Identifier != "" && c.Secret != ""
}

// String redacts the secret.
func (c Credential) String() string {
	if c.Secret == "" {
		return c.Identifier
	}
	return c.Identifier + ":******"
}
