package model

// Credential is a dashboard session: the opaque cookie token and the
// identity (e-mail) it was issued for.
type Credential struct {
	Token    string
	Identity string
}

// Valid reports whether the credential carries a token.
func (c Credential) Valid() bool {
	return c.Token != ""
}
