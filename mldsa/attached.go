package mldsa

import "io"

// SignAttached returns the signed message sig || message.
func (sk *PrivateKey) SignAttached(rand io.Reader, message, context []byte) ([]byte, error) {
	sig, err := sk.SignWithContext(rand, message, context)
	if err != nil {
		return nil, err
	}
	return append(sig, message...), nil
}

// Open verifies a signed message produced by SignAttached and returns the
// message it carries.
func (pk *PublicKey) Open(signedMessage, context []byte) ([]byte, error) {
	sigSize := pk.p.SignatureSize()
	if len(signedMessage) < sigSize {
		return nil, ErrVerification
	}
	sig, message := signedMessage[:sigSize], signedMessage[sigSize:]
	if !pk.Verify(sig, message, context) {
		return nil, ErrVerification
	}
	return append([]byte(nil), message...), nil
}
