package netmon

import "errors"

// ErrInterfaceNotFound is returned by a LookupFunc when the interface does not exist.
var ErrInterfaceNotFound = errors.New("netmon: interface not found")
