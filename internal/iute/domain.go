// Package iute talks to the iuteCredit e-shop management API: status and
// product-mapping calls, the public signing key, and webhook verification.
package iute

// tldByCountry follows the country-to-domain table from the integration
// doc. Albania (EN) shares the AL domain.
var tldByCountry = map[string]string{
	"al": "al",
	"en": "al",
	"mk": "mk",
	"md": "md",
	"bg": "bg",
	"bs": "ba",
}

// DomainForCountry returns the active provider base URL for a country code.
// Unknown countries fall back to the MK domain.
func DomainForCountry(country string, testMode bool) string {
	base := "https://ecom.iutecredit"
	if testMode {
		base = "https://ecom-stage.iutecredit"
	}
	tld, ok := tldByCountry[country]
	if !ok {
		tld = "mk"
	}
	return base + "." + tld
}
