package models

import "strings"

// multiLabelSuffixes lists known multi-label public suffixes, ordered by how
// common they are. Matching stops at the first hit, so entries earlier in the
// table shadow later ones; this is a static approximation of the public
// suffix list, not authoritative.
var multiLabelSuffixes = []string{
	// Country-code second-level suffixes
	"com.cn", "net.cn", "org.cn", "gov.cn", "edu.cn", "mil.cn", "ac.cn",
	"co.uk", "org.uk", "me.uk", "net.uk", "ltd.uk", "plc.uk", "gov.uk", "ac.uk",
	"com.au", "net.au", "org.au", "edu.au", "gov.au", "asn.au", "id.au",
	"co.jp", "or.jp", "ne.jp", "ac.jp", "ad.jp", "ed.jp", "go.jp", "gr.jp",
	"co.kr", "or.kr", "ne.kr", "re.kr", "pe.kr", "go.kr", "mil.kr", "ac.kr",
	"com.tw", "net.tw", "org.tw", "edu.tw", "gov.tw", "idv.tw", "game.tw",
	"com.hk", "net.hk", "org.hk", "gov.hk", "edu.hk", "idv.hk",
	"com.sg", "net.sg", "org.sg", "edu.sg", "gov.sg", "per.sg",
	"co.nz", "net.nz", "org.nz", "edu.nz", "govt.nz", "iwi.nz", "maori.nz",
	"com.br", "net.br", "org.br", "gov.br", "edu.br", "mil.br", "art.br",
	"co.in", "net.in", "org.in", "gen.in", "firm.in", "ind.in", "nic.in", "ac.in", "edu.in", "res.in", "gov.in", "mil.in",
	"com.mx", "net.mx", "org.mx", "edu.mx", "gob.mx",
	"co.za", "net.za", "org.za", "edu.za", "gov.za", "nom.za", "web.za",
	"com.my", "net.my", "org.my", "edu.my", "gov.my", "mil.my", "name.my",
	"com.ph", "net.ph", "org.ph", "edu.ph", "gov.ph", "mil.ph",
	"co.th", "in.th", "ac.th", "go.th", "mi.th", "or.th", "net.th",
	"com.vn", "net.vn", "org.vn", "edu.vn", "gov.vn", "int.vn", "ac.vn", "biz.vn", "info.vn", "name.vn", "pro.vn", "health.vn",
	"com.ru", "net.ru", "org.ru", "pp.ru",
	"co.id", "or.id", "ac.id", "sch.id", "go.id", "mil.id", "net.id", "web.id", "biz.id", "my.id",
	// Europe
	"co.de", "com.de",
	"co.it",
	"com.fr",
	"co.nl", "com.nl",
	"co.pl", "com.pl", "net.pl", "org.pl",
	// Other common ccTLDs
	"com.ar", "net.ar", "org.ar", "gov.ar", "mil.ar", "int.ar",
	"com.tr", "net.tr", "org.tr", "biz.tr", "info.tr", "tv.tr", "gen.tr", "web.tr", "tel.tr", "av.tr", "dr.tr", "bbs.tr", "pol.tr", "edu.tr", "k12.tr", "gov.tr", "mil.tr", "bel.tr",
	// Hosting platforms
	"github.io", "gitlab.io", "pages.dev", "workers.dev", "vercel.app", "netlify.app", "herokuapp.com", "appspot.com",
	"blogspot.com", "blogspot.jp", "blogspot.co.uk",
	"s3.amazonaws.com", "cloudfront.net",
	"azurewebsites.net", "cloudapp.azure.com",
}

// IsPrimaryDomain reports whether domain is a registrable (primary) domain:
// exactly one label in front of the first matching multi-label suffix, or
// exactly two labels when no suffix matches. Anything else, including names
// with fewer than two labels, is a subdomain.
func IsPrimaryDomain(domain string) bool {
	if domain == "" {
		return false
	}
	lower := strings.ToLower(domain)
	labels := strings.Split(lower, ".")
	if len(labels) < 2 {
		return false
	}

	for _, suffix := range multiLabelSuffixes {
		if strings.HasSuffix(lower, "."+suffix) {
			return len(labels) == strings.Count(suffix, ".")+2
		}
	}

	return len(labels) == 2
}
