// Package imagekit issues the signed parameters a browser needs to upload a
// payment receipt directly to ImageKit.
package imagekit

import (
	"errors"
	"time"

	"github.com/google/uuid"
	ik "github.com/imagekit-developer/imagekit-go"
)

// ErrNotConfigured is returned when no private key is set.
var ErrNotConfigured = errors.New("imagekit is not configured")

// AuthParams are the client-side upload credentials.
type AuthParams struct {
	Token       string `json:"token"`
	Expire      int64  `json:"expire"`
	Signature   string `json:"signature"`
	PublicKey   string `json:"publicKey,omitempty"`
	URLEndpoint string `json:"urlEndpoint,omitempty"`
}

// Signer creates upload credentials through the ImageKit SDK.
type Signer struct {
	client      *ik.ImageKit
	publicKey   string
	urlEndpoint string
	ttl         time.Duration
	now         func() time.Time
	newToken    func() string
}

// NewSigner builds a signer. A non-positive ttl falls back to 30 minutes.
// Without a private key the signer stays unconfigured.
func NewSigner(publicKey, privateKey, urlEndpoint string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &Signer{
		publicKey:   publicKey,
		urlEndpoint: urlEndpoint,
		ttl:         ttl,
		now:         time.Now,
		newToken:    func() string { return uuid.NewString() },
	}
	if privateKey != "" {
		s.client = ik.NewFromParams(ik.NewParams{
			PrivateKey:  privateKey,
			PublicKey:   publicKey,
			UrlEndpoint: urlEndpoint,
		})
	}
	return s
}

// Configured reports whether the signer can issue credentials.
func (s *Signer) Configured() bool {
	return s != nil && s.client != nil
}

// Authenticate returns a fresh token, its expiry as a unix timestamp and the
// signature ImageKit expects for that pair.
func (s *Signer) Authenticate() (AuthParams, error) {
	if !s.Configured() {
		return AuthParams{}, ErrNotConfigured
	}

	signed := s.client.SignToken(ik.SignTokenParam{
		Token:   s.newToken(),
		Expires: s.now().Add(s.ttl).Unix(),
	})

	return AuthParams{
		Token:       signed.Token,
		Expire:      signed.Expires,
		Signature:   signed.Signature,
		PublicKey:   s.publicKey,
		URLEndpoint: s.urlEndpoint,
	}, nil
}
