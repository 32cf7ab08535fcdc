package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
)

// randReader is the entropy source for ids and codes. Tests swap it.
var randReader io.Reader = rand.Reader

func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}

var otpSpan = big.NewInt(900000)

// GenerateOTP returns a uniformly distributed code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(randReader, otpSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
