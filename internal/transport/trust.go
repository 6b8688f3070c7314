package transport

import (
	"crypto/x509"
	"sync"
)

var (
	trustMu   sync.RWMutex
	trustPool *x509.CertPool
)

// InstallGlobalCAStore replaces the process-wide trust store with the
// certificates in pemData.
func InstallGlobalCAStore(pemData []byte) error {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemData) {
		return ErrNoCertificates
	}

	trustMu.Lock()
	trustPool = pool
	trustMu.Unlock()
	return nil
}

// GlobalCAStore returns the installed pool, or nil for the system roots.
func GlobalCAStore() *x509.CertPool {
	trustMu.RLock()
	defer trustMu.RUnlock()
	return trustPool
}

// ResetGlobalCAStore drops the installed pool.
func ResetGlobalCAStore() {
	trustMu.Lock()
	trustPool = nil
	trustMu.Unlock()
}
