package nicepay

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
)

const (
	// payMethodCard and mediaTypeBilling are the TID infix for card billing.
	payMethodCard    = "01"
	mediaTypeBilling = "16"
)

// encryptCardData builds the EncData field: the card query string,
// AES-128-ECB encrypted with the first 16 bytes of the merchant key and
// PKCS#5 padded, hex encoded.
func encryptCardData(merchantKey string, card gateway.CardData) (string, error) {
	if len(merchantKey) < aes.BlockSize {
		return "", fmt.Errorf("merchant key must be at least %d bytes", aes.BlockSize)
	}

	plain := strings.Join([]string{
		"CardNo=" + card.CardNo,
		"ExpYear=" + card.ExpYear,
		"ExpMonth=" + card.ExpMonth,
		"IDNo=" + card.IDNo,
		"CardPw=" + card.CardPw,
	}, "&")

	block, err := aes.NewCipher([]byte(merchantKey[:aes.BlockSize]))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs5Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}

	return hex.EncodeToString(out), nil
}

func pkcs5Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// signData is the lowercase hex SHA-256 of the fields concatenated in order.
func signData(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "")))
	return hex.EncodeToString(sum[:])
}

// ediDate formats t as YYYYMMDDhhmmss in Korean time.
func ediDate(t time.Time) string {
	return biztime.FormatEdiDate(t)
}

// newTID builds a 30 character transaction ID:
// MID(10) + pay method(2) + media(2) + yyMMddHHmmss(12) + random(4).
func newTID(mid string, t time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate TID suffix: %w", err)
	}
	stamp := t.In(biztime.Location()).Format("060102150405")
	return fmt.Sprintf("%s%s%s%s%04d", mid, payMethodCard, mediaTypeBilling, stamp, n.Int64()), nil
}

// maskForm hides sensitive fields before a request is logged.
func maskForm(form url.Values) url.Values {
	masked := make(url.Values, len(form))
	for k, v := range form {
		switch k {
		case "EncData", "SignData":
			masked[k] = []string{"***"}
		default:
			masked[k] = v
		}
	}
	return masked
}
