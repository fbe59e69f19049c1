package avatar

import (
	"fmt"
	"net/url"
)

// Variant selects the avatar collection used for generation
type Variant string

const (
	VariantOpenPeeps     Variant = "open-peeps"
	VariantBotttsNeutral Variant = "bottts-neutral"
	VariantInitials      Variant = "initials"
)

const baseURL = "https://api.dicebear.com/9.x"

// GenerateURL returns a deterministic avatar image URL for the given seed.
// The same seed always yields the same image, so agent identities keep a
// stable appearance across chat messages.
func GenerateURL(seed string, variant Variant) string {
	if variant == "" {
		variant = VariantInitials
	}
	return fmt.Sprintf("%s/%s/svg?seed=%s", baseURL, variant, url.QueryEscape(seed))
}
