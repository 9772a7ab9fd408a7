package checker

import (
	"context"
	"errors"

	whoisparser "github.com/likexian/whois-parser"
	"github.com/rs/zerolog/log"

	"github.com/williamzujkowski/domainchecker/pkg/domain"
	"github.com/williamzujkowski/domainchecker/pkg/util"
)

// WhoisClient performs a raw WHOIS query. *whois.Client from
// github.com/likexian/whois satisfies it.
type WhoisClient interface {
	Whois(domainName string, servers ...string) (string, error)
}

// StatusClient queries the fallback status API for a domain using the
// given credential and returns the status tokens.
type StatusClient interface {
	Status(ctx context.Context, domainName, key string) ([]string, error)
}

// Oracle determines a single domain's availability using a two-tier
// strategy: a WHOIS lookup first, confirmed through the status API when
// WHOIS says the domain is taken and credentials are configured.
//
// Check never fails: every internal error maps to a conservative
// verdict. WHOIS errors bias toward available so a free domain is
// never missed; fallback errors bias toward unavailable so they never
// overturn the WHOIS finding without explicit evidence.
type Oracle struct {
	whois  WhoisClient
	status StatusClient
	keys   *Rotator
}

// NewOracle creates an availability oracle. status may be nil when no
// fallback tier is configured.
func NewOracle(whoisClient WhoisClient, statusClient StatusClient, keys *Rotator) *Oracle {
	return &Oracle{
		whois:  whoisClient,
		status: statusClient,
		keys:   keys,
	}
}

// Check determines whether a domain is available to register.
func (o *Oracle) Check(ctx context.Context, domainName string) domain.LookupResult {
	log.Info().Str("domain", domainName).Msg("Checking domain")

	ascii := util.Punycode(domainName)

	available := o.whoisAvailable(ascii)
	if available {
		log.Info().Str("domain", domainName).Msg("WHOIS indicates domain is available")
	} else {
		log.Info().Str("domain", domainName).Msg("WHOIS indicates domain is taken")
		if o.status != nil && !o.keys.Empty() {
			available = o.fallbackAvailable(ctx, ascii)
		}
	}

	return domain.LookupResult{Domain: domainName, Available: available}
}

// whoisAvailable runs the primary lookup. No registration record, or
// any lookup failure, counts as available.
func (o *Oracle) whoisAvailable(domainName string) bool {
	raw, err := o.whois.Whois(domainName)
	if err != nil {
		log.Warn().Err(err).Str("domain", domainName).Msg("WHOIS lookup failed")
		return true
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		switch {
		case errors.Is(err, whoisparser.ErrNotFoundDomain):
			return true
		case errors.Is(err, whoisparser.ErrReservedDomain),
			errors.Is(err, whoisparser.ErrPremiumDomain),
			errors.Is(err, whoisparser.ErrBlockedDomain):
			// Registry withholds these; not obtainable either way.
			return false
		default:
			log.Warn().Err(err).Str("domain", domainName).Msg("WHOIS response not parseable")
			return true
		}
	}

	return info.Domain == nil || info.Domain.Domain == ""
}

// fallbackAvailable confirms a "taken" WHOIS verdict through the
// status API. Only explicit evidence of availability overrides it.
func (o *Oracle) fallbackAvailable(ctx context.Context, domainName string) bool {
	key, ok := o.keys.Next()
	if !ok {
		return false
	}

	tokens, err := o.status.Status(ctx, domainName, key)
	if err != nil {
		log.Error().Err(err).Str("domain", domainName).Msg("Domainr lookup failed")
		return false
	}

	for _, token := range tokens {
		if token == "undelegated" || token == "inactive" {
			return true
		}
	}
	return false
}
