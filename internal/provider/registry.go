package provider

import (
	"fmt"
	"strings"
)

// Spec declares one configured provider adapter.
type Spec struct {
	Name   string
	Scheme string
	Secret string
}

const (
	SchemeHMAC  = "hmac"
	SchemeToken = "token"
)

// ParseSpecs parses the configuration form "name:scheme:secret[,...]".
func ParseSpecs(raw string) ([]Spec, error) {
	var specs []Spec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 3)
		if len(fields) != 3 || fields[0] == "" || fields[2] == "" {
			return nil, fmt.Errorf("invalid webhook secret entry %q", part)
		}
		switch fields[1] {
		case SchemeHMAC, SchemeToken:
		default:
			return nil, fmt.Errorf("unknown webhook auth scheme %q", fields[1])
		}
		specs = append(specs, Spec{Name: fields[0], Scheme: fields[1], Secret: fields[2]})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no webhook providers configured")
	}
	return specs, nil
}

// Registry resolves provider adapters by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds adapters for every spec.
func NewRegistry(specs []Spec) (*Registry, error) {
	providers := make(map[string]Provider, len(specs))
	for _, spec := range specs {
		if _, exists := providers[spec.Name]; exists {
			return nil, fmt.Errorf("duplicate webhook provider %q", spec.Name)
		}
		switch spec.Scheme {
		case SchemeHMAC:
			providers[spec.Name] = NewHMACProvider(spec.Name, spec.Secret)
		case SchemeToken:
			providers[spec.Name] = NewTokenProvider(spec.Name, spec.Secret)
		default:
			return nil, fmt.Errorf("unknown webhook auth scheme %q", spec.Scheme)
		}
	}
	return &Registry{providers: providers}, nil
}

// Lookup returns the adapter registered under name.
func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
