//go:build go1.25

package mldsa

import "crypto"

var _ crypto.MessageSigner = (*PrivateKey)(nil)
