package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

const (
	DNSResolves          = "RESOLVES"
	DNSNXDomain          = "NXDOMAIN"
	DNSNoARecord         = "NO_A_RECORD"
	DNSServfailOrTimeout = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName       = "INVALID_NAME"
)

// DNSStatus explains why a host may be unreachable. It only feeds the
// diagnostic log of failed probes.
type DNSStatus struct {
	Class         string
	CNAME         string
	Nameservers   []string
	ResolverError string
}

var dnsTimeout = 3 * time.Second

func CheckDNS(ctx context.Context, host string) DNSStatus {
	host = strings.TrimSpace(host)
	switch {
	case host == "" || strings.Contains(host, "://"):
		return DNSStatus{Class: DNSInvalidName}
	case net.ParseIP(host) != nil:
		return DNSStatus{Class: DNSResolves}
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := net.DefaultResolver

	var st DNSStatus
	if cname, err := r.LookupCNAME(ctx, host); err == nil {
		if c := strings.TrimSuffix(cname, "."); !strings.EqualFold(c, host) {
			st.CNAME = c
		}
	}
	if ns, err := r.LookupNS(ctx, host); err == nil {
		for _, n := range ns {
			st.Nameservers = append(st.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		st.ResolverError = err.Error()
	}
	st.Class = classifyDNS(err, len(addrs) > 0, len(st.Nameservers) > 0)
	return st
}

// classifyDNS maps an address lookup result to a DNS class. A zone with
// nameservers but no address is NO_A_RECORD rather than NXDOMAIN.
func classifyDNS(err error, hasAddr, hasNS bool) string {
	var de *net.DNSError
	notFound := err == nil || (errors.As(err, &de) && de.IsNotFound)
	switch {
	case err == nil && hasAddr:
		return DNSResolves
	case notFound && hasNS:
		return DNSNoARecord
	case notFound:
		return DNSNXDomain
	default:
		return DNSServfailOrTimeout
	}
}

// Host pulls the hostname out of a target URL.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
