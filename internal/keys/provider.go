// Package keys loads or generates the RSA key pair used to sign and verify
// access tokens. Exactly one key pair is active per process: resolution is
// memoized on first use and generation happens at most once, even under
// concurrent first access.
//
// Resolution order for each half:
//  1. inline PEM from configuration
//  2. PEM file under the configured key directory
//  3. generate a 2048-bit pair and persist both halves
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrKeyUnavailable is wrapped by every error the provider returns when no
// key material can be produced (bad PEM, unreadable dir, failed generation).
var ErrKeyUnavailable = errors.New("keys: key material unavailable")

const (
	// KeyID is the identifier published in the JWKS document and usable as
	// the "kid" header of issued tokens. A single active key keeps it constant.
	KeyID = "key-1"

	keySize         = 2048
	privateFileName = "private_key.pem"
	publicFileName  = "public_key.pem"
)

// Config configures key resolution.
type Config struct {
	// PrivatePEM is inline private key material. Takes precedence over files.
	PrivatePEM string `yaml:"private_pem" mapstructure:"private_pem"`
	// PublicPEM is inline public key material. Takes precedence over files.
	PublicPEM string `yaml:"public_pem" mapstructure:"public_pem"`
	// Dir is the directory holding (or receiving) the PEM files.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = "keys"
	}
}

// Provider resolves and caches the process signing key pair.
type Provider struct {
	cfg Config

	once    sync.Once
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	err     error
}

// NewProvider creates a key provider. No I/O happens until first use.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{cfg: cfg}
}

// Signing returns the private signing key.
func (p *Provider) Signing() (*rsa.PrivateKey, error) {
	p.resolve()
	if p.err != nil {
		return nil, p.err
	}
	return p.private, nil
}

// Verification returns the public verification key.
func (p *Provider) Verification() (*rsa.PublicKey, error) {
	p.resolve()
	if p.err != nil {
		return nil, p.err
	}
	return p.public, nil
}

// resolve performs key resolution exactly once.
func (p *Provider) resolve() {
	p.once.Do(func() {
		priv, pub, err := p.load()
		if err != nil {
			p.err = fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
			return
		}
		p.private = priv
		p.public = pub
	})
}

func (p *Provider) load() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if p.cfg.PrivatePEM != "" {
		priv, err := parsePrivatePEM([]byte(p.cfg.PrivatePEM))
		if err != nil {
			return nil, nil, fmt.Errorf("inline private key: %v", err)
		}
		pub := &priv.PublicKey
		if p.cfg.PublicPEM != "" {
			pub, err = parsePublicPEM([]byte(p.cfg.PublicPEM))
			if err != nil {
				return nil, nil, fmt.Errorf("inline public key: %v", err)
			}
		}
		return priv, pub, nil
	}

	privPath := filepath.Join(p.cfg.Dir, privateFileName)
	if data, err := os.ReadFile(privPath); err == nil {
		priv, err := parsePrivatePEM(data)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %v", privPath, err)
		}
		return priv, &priv.PublicKey, nil
	}

	return p.generate()
}

// generate creates a new pair and persists both halves so restarts keep
// verifying tokens issued before the restart.
func (p *Provider) generate() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key pair: %v", err)
	}

	if err := os.MkdirAll(p.cfg.Dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create key dir %s: %v", p.cfg.Dir, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	if err := os.WriteFile(filepath.Join(p.cfg.Dir, privateFileName), privPEM, 0o600); err != nil {
		return nil, nil, fmt.Errorf("persist private key: %v", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(filepath.Join(p.cfg.Dir, publicFileName), pubPEM, 0o644); err != nil {
		return nil, nil, fmt.Errorf("persist public key: %v", err)
	}

	return priv, &priv.PublicKey, nil
}

// parsePrivatePEM accepts both PKCS#8 and PKCS#1 encodings.
func parsePrivatePEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("not an RSA private key")
		}
		return rsaKey, nil
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func parsePublicPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return rsaKey, nil
}
