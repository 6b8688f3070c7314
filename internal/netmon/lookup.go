package netmon

import (
	"fmt"
	"net"
	"net/netip"
)

// InterfaceInfo is a point-in-time view of a network interface.
type InterfaceInfo struct {
	Name         string
	Up           bool
	HardwareAddr net.HardwareAddr
	Addrs        []netip.Addr
}

// LookupFunc resolves an interface by name. It returns an error wrapping
// ErrInterfaceNotFound when the interface is absent.
type LookupFunc func(name string) (InterfaceInfo, error)

// SystemLookup reads interface state from the host.
func SystemLookup(name string) (InterfaceInfo, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return InterfaceInfo{}, fmt.Errorf("%w: %s: %w", ErrInterfaceNotFound, name, err)
	}

	info := InterfaceInfo{
		Name:         iface.Name,
		Up:           iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0,
		HardwareAddr: iface.HardwareAddr,
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return InterfaceInfo{}, fmt.Errorf("reading addresses of %s: %w", name, err)
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if addr, ok := netip.AddrFromSlice(ipNet.IP); ok {
			info.Addrs = append(info.Addrs, addr.Unmap())
		}
	}
	return info, nil
}

// routable reports whether addr can carry traffic beyond the local link.
func routable(addr netip.Addr) bool {
	return addr.IsValid() &&
		!addr.IsUnspecified() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsMulticast()
}
