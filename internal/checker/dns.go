package checker

import (
	"context"
	"time"

	"github.com/miekg/dns"
)

// Resolver answers the question "does this name resolve at all",
// used as a pre-check before a domain is added to the watch list.
type Resolver struct {
	client  *dns.Client
	servers []string
}

func NewResolver() *Resolver {
	servers := []string{"8.8.8.8:53"}
	if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
		servers = servers[:0]
		for _, s := range conf.Servers {
			servers = append(servers, s+":"+conf.Port)
		}
	}

	return &Resolver{
		client:  &dns.Client{Timeout: 5 * time.Second},
		servers: servers,
	}
}

// Resolvable reports whether domain has an A, AAAA, or CNAME record.
func (r *Resolver) Resolvable(ctx context.Context, domain string) bool {
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeCNAME} {
		if r.hasRecord(ctx, domain, qtype) {
			return true
		}
	}
	return false
}

func (r *Resolver) hasRecord(ctx context.Context, domain string, qtype uint16) bool {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true

	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil || resp == nil {
			continue
		}
		if resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0 {
			return true
		}
	}
	return false
}
