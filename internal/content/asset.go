package content

import (
	"net/url"
	"strings"
)

// ResolveAssetURL joins an asset identifier onto base exactly once.
// Absolute URLs, protocol-relative URLs and data URIs are returned unchanged,
// as are identifiers that already carry the base. Root-absolute paths resolve
// against the origin of an absolute base and are kept as they are otherwise.
func ResolveAssetURL(base, assetID string) string {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return strings.TrimRight(base, "/")
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if isRootAbsolute(assetID) {
		if origin, ok := originOf(base); ok {
			return origin + assetID
		}
		return assetID
	}
	if isAbsoluteAsset(assetID) {
		return assetID
	}

	if base == "" {
		return assetID
	}
	if assetID == base || strings.HasPrefix(assetID, base+"/") {
		return assetID
	}

	rel := strings.TrimPrefix(assetID, "./")
	rel = strings.TrimLeft(rel, "/")
	return base + "/" + rel
}

func isRootAbsolute(id string) bool {
	return strings.HasPrefix(id, "/") && !strings.HasPrefix(id, "//")
}

// originOf returns scheme://host of an absolute http(s) URL.
func originOf(base string) (string, bool) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	return scheme + "://" + u.Host, true
}

func isAbsoluteAsset(id string) bool {
	if strings.HasPrefix(id, "//") || strings.HasPrefix(id, "/") {
		return true
	}
	lower := strings.ToLower(id)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "blob:") {
		return true
	}
	u, err := url.Parse(id)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
