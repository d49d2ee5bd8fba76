package soa

import (
	"fmt"
	"github.com/skybi/soa-bridge/internal/failure"
	"net/url"
	"strings"
)

// Endpoint identifies a single versioned service operation
type Endpoint struct {
	Library   string
	Version   string
	Service   string
	Operation string
}

var (
	EndpointLogin           = Endpoint{Library: "Core", Version: "2011-06", Service: "Session", Operation: "login"}
	EndpointSessionInfo     = Endpoint{Library: "Core", Version: "2007-01", Service: "Session", Operation: "getTCSessionInfo"}
	EndpointGetProperties   = Endpoint{Library: "Core", Version: "2006-03", Service: "DataManagement", Operation: "getProperties"}
	EndpointExpandRelations = Endpoint{Library: "Core", Version: "2007-09", Service: "DataManagement", Operation: "expandGRMRelationsForPrimary"}
	EndpointCreateItems     = Endpoint{Library: "Core", Version: "2006-03", Service: "DataManagement", Operation: "createItems"}
	EndpointPerformSearch   = Endpoint{Library: "Query", Version: "2012-10", Service: "Finder", Operation: "performSearch"}
)

// Path returns the path suffix of the operation, e.g. 'Core-2011-06-Session/login'
func (endpoint Endpoint) Path() string {
	return fmt.Sprintf("%s-%s-%s/%s", endpoint.Library, endpoint.Version, endpoint.Service, endpoint.Operation)
}

// String returns the path suffix of the operation
func (endpoint Endpoint) String() string {
	return endpoint.Path()
}

// ParseBaseAddress validates the base address of the service.
// Only absolute http and https addresses are accepted.
func ParseBaseAddress(address string) (*url.URL, error) {
	if strings.TrimSpace(address) == "" {
		return nil, &failure.Error{Kind: failure.KindInvalidEndpoint, Message: "no base address configured"}
	}
	parsed, err := url.Parse(address)
	if err != nil {
		return nil, failure.Wrap(failure.KindInvalidEndpoint, address, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &failure.Error{Kind: failure.KindInvalidEndpoint, Endpoint: address, Message: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return nil, &failure.Error{Kind: failure.KindInvalidEndpoint, Endpoint: address, Message: "missing host"}
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawPath = ""
	return parsed, nil
}

// resolve builds the absolute URL of an operation below the base address
func resolve(base *url.URL, endpoint Endpoint) (string, error) {
	if endpoint.Library == "" || endpoint.Version == "" || endpoint.Service == "" || endpoint.Operation == "" {
		return "", &failure.Error{Kind: failure.KindInvalidEndpoint, Endpoint: endpoint.Path(), Message: "incomplete endpoint definition"}
	}
	target := *base
	target.Path = base.Path + "/" + endpoint.Path()
	return target.String(), nil
}
