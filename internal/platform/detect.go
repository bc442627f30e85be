package platform

import (
	"net/url"
	"strings"

	"trustlens/internal/types"
)

// markers are tried in order; the first host substring match wins.
var markers = []struct {
	substr string
	tag    types.Platform
}{
	{"amazon.", types.PlatformAmazon},
	{"ebay.", types.PlatformEbay},
	{"daraz.", types.PlatformDaraz},
	{"aliexpress", types.PlatformAliexpress},
	{"taobao", types.PlatformAliexpress},
	{"tmall", types.PlatformAliexpress},
	{"walmart", types.PlatformWalmart},
}

// Detect classifies a URL into a known platform tag. It is pure and never
// fails: anything unrecognized (including unparseable input) maps to generic.
func Detect(rawURL string) types.Platform {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return DetectHost(host)
}

// DetectHost classifies a bare host name into a platform tag.
func DetectHost(host string) types.Platform {
	host = strings.ToLower(host)
	for _, m := range markers {
		if strings.Contains(host, m.substr) {
			return m.tag
		}
	}
	return types.PlatformGeneric
}
