package jupiter

import (
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-swap-bot/internal/wallet"
)

// signLegacyTransaction signs a base64-encoded legacy transaction with the
// given keypair and returns the signed transaction base64-encoded.
//
// Legacy wire layout: compact-u16 signature count, that many 64-byte
// signature slots, then the message. The fee payer is the first account in
// the message and must own the first signature slot.
func signLegacyTransaction(txBase64 string, kp *wallet.Keypair) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	numSigs, offset, err := decodeCompactU16(raw)
	if err != nil {
		return "", fmt.Errorf("read signature count: %w", err)
	}
	if numSigs == 0 {
		return "", fmt.Errorf("transaction requires no signatures")
	}

	msgStart := offset + numSigs*64
	if msgStart >= len(raw) {
		return "", fmt.Errorf("transaction truncated: %d bytes, message starts at %d", len(raw), msgStart)
	}
	message := raw[msgStart:]

	feePayer, err := messageFeePayer(message)
	if err != nil {
		return "", err
	}
	if feePayer != kp.PublicKey() {
		return "", fmt.Errorf("fee payer %s does not match signer %s", feePayer, kp.PublicKey())
	}

	sig := kp.Sign(message)
	copy(raw[offset:offset+64], sig)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeCompactU16 reads a compact-u16 length prefix and returns the value
// and the number of bytes consumed.
func decodeCompactU16(b []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, fmt.Errorf("truncated compact-u16")
		}
		elem := int(b[i])
		value |= (elem & 0x7f) << (7 * i)
		if elem&0x80 == 0 {
			if value > 0xffff {
				return 0, 0, fmt.Errorf("compact-u16 overflow: %d", value)
			}
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("compact-u16 too long")
}

// messageFeePayer extracts the first account key from a legacy message.
// Layout: 3-byte header, compact-u16 account count, then 32-byte keys.
func messageFeePayer(msg []byte) (string, error) {
	if len(msg) < 3 {
		return "", fmt.Errorf("message too short: %d bytes", len(msg))
	}
	numKeys, n, err := decodeCompactU16(msg[3:])
	if err != nil {
		return "", fmt.Errorf("read account count: %w", err)
	}
	if numKeys == 0 {
		return "", fmt.Errorf("message has no account keys")
	}
	keyStart := 3 + n
	if keyStart+32 > len(msg) {
		return "", fmt.Errorf("message truncated before first account key")
	}
	return base58.Encode(msg[keyStart : keyStart+32]), nil
}
