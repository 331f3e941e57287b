package domain

// CredentialRef is an opaque handle to signing material. It carries no key
// bytes itself; credential sources resolve it to a keypair on demand.
type CredentialRef struct {
	UserID int64 // chat user the credential belongs to
}

// SwapRequest describes a single swap handed to the swap executor. Buys put
// wrapped SOL on the input side, sells put it on the output side.
// Constructed once per accepted amount input, passed by value, never stored.
type SwapRequest struct {
	InputMint       string        // mint being spent (base58)
	OutputMint      string        // mint being bought (base58)
	Amount          uint64        // amount in base units of the input mint
	SenderPublicKey string        // resolved sender wallet address (base58)
	Credential      CredentialRef // handle used to sign the transaction
}

// SwapResult is the outcome of a successful swap.
type SwapResult struct {
	Signature   string // transaction signature (base58)
	ExplorerURL string // solscan link built from the signature
}
