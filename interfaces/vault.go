package interfaces

// CredentialVault reversibly encrypts stored mailbox passwords.
type CredentialVault interface {
	Seal(plaintext string) (cipher string, nonce string, err error)
	Open(cipher string, nonce string) (string, error)
}
