package domain

// UserWallet is a per-user custodial wallet.
// Corresponds to user_wallets table in PostgreSQL. The secret key is stored
// only in encrypted envelope form; decryption happens in the wallet package.
type UserWallet struct {
	UserID          int64  // chat user identifier, primary key
	PublicKey       string // wallet address (base58)
	EncryptedSecret []byte // encrypted 64-byte ed25519 secret key
	CreatedAt       int64  // Unix timestamp in milliseconds
}
