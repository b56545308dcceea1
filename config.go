package account

// SimpleConfig is a plain-struct Config for wiring and tests.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
}

var _ Config = SimpleConfig{}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }
