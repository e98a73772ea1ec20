package domain

// Principal is an authenticated actor: the outcome of credential verification
// or reconciliation, and the input to session issuance.
type Principal struct {
	UserID    string
	Roles     []string
	IsNewUser bool
}
