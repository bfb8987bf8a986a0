package probe

import (
	"strings"

	"github.com/mkosuda/proxyvet/internal/model"
)

// leakHeaders are the request headers known to carry the original client's
// address through a relay. The list covers the forwarded-for family, the
// standard Via header, the client-IP variants some relays use instead, and
// the CDN headers that surface the connecting address.
var leakHeaders = []string{
	"X-Forwarded-For",
	"X-Real-Ip",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
	"Via",
	"X-Client-Ip",
	"Client-Ip",
	"True-Client-Ip",
	"Cf-Connecting-Ip",
}

// FindLeak inspects an oracle-reflected header map for our real address.
// It returns the name of the first leaking header found, in leakHeaders
// order, and whether a leak was found at all.
//
// Header names are matched case-insensitively: the oracle reflects the
// names as it received them, and relays are not consistent about casing.
func FindLeak(headers map[string]string, identity model.RealIdentity) (string, bool) {
	if !identity.Known() || len(headers) == 0 {
		return "", false
	}

	lowered := make(map[string]string, len(headers))
	for name, value := range headers {
		lowered[strings.ToLower(name)] = value
	}

	for _, name := range leakHeaders {
		value, ok := lowered[strings.ToLower(name)]
		if ok && value != "" && strings.Contains(value, string(identity)) {
			return name, true
		}
	}

	return "", false
}
