package netopia

import (
	"crypto/rsa"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// VerificationHeader carries the signed token of an IPN.
	VerificationHeader = "Verification-token"
	issuer             = "NETOPIA Payments"
)

var ErrInvalidSignature = errors.New("netopia: invalid ipn signature")

// Notification is the verified IPN payload.
type Notification struct {
	Order struct {
		OrderID string `json:"orderID"`
		NtpID   string `json:"ntpID"`
	} `json:"order"`
	Payment struct {
		Status  int    `json:"status"`
		Code    string `json:"code"`
		Message string `json:"message"`
		NtpID   string `json:"ntpID"`
	} `json:"payment"`
}

func (n *Notification) OrderID() string { return n.Order.OrderID }

func (n *Notification) Approved() bool {
	return n.Payment.Status == StatusPaid || n.Payment.Status == StatusConfirmed
}

func (n *Notification) Failed() bool { return n.Payment.Status == StatusFailed }

// Verifier checks that an IPN body was signed by the gateway for this POS.
// The token is an RS512 JWT issued by NETOPIA whose audience lists the POS
// signature and whose subject is base64(sha512(body)).
type Verifier struct {
	key          *rsa.PublicKey
	posSignature string
	leeway       time.Duration
}

func NewVerifier(key *rsa.PublicKey, posSignature string) *Verifier {
	return &Verifier{key: key, posSignature: posSignature, leeway: time.Minute}
}

// LoadVerifier reads the gateway public key (PEM key or certificate).
func LoadVerifier(path, posSignature string) (*Verifier, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading netopia public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing netopia public key: %w", err)
	}
	return NewVerifier(key, posSignature), nil
}

func (v *Verifier) Verify(token string, body []byte) (*Notification, error) {
	if v == nil || v.key == nil {
		return nil, fmt.Errorf("no public key configured: %w", ErrInvalidSignature)
	}
	if token == "" {
		return nil, fmt.Errorf("missing %s: %w", VerificationHeader, ErrInvalidSignature)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS512.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(v.posSignature),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	sum := sha512.Sum512(body)
	want := base64.StdEncoding.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(want)) != 1 {
		return nil, fmt.Errorf("payload hash mismatch: %w", ErrInvalidSignature)
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("decoding ipn: %w", err)
	}
	return &n, nil
}
