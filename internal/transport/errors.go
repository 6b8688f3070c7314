package transport

import "errors"

// ErrNoCertificates is returned when a PEM bundle contains no usable certificate.
var ErrNoCertificates = errors.New("transport: no certificates found in PEM data")
