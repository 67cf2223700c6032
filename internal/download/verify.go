package download

import (
	"os"

	"github.com/sassoftware/go-rpmutils"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
)

// VerifyDownloads sanity-checks that each materialized file parses as an
// RPM (lead + header). It catches HTML error pages and truncated bodies
// that mirrors occasionally serve with a 200. Unreadable files are warned
// about, not fatal; the returned count is how many files checked out.
func VerifyDownloads(provenance []Provenance) int {
	log := logger.Logger()

	ok := 0
	for _, p := range provenance {
		f, err := os.Open(p.Dest)
		if err != nil {
			log.Warnf("cannot open %s for verification: %v", p.Dest, err)
			continue
		}
		rpm, err := rpmutils.ReadRpm(f)
		if err != nil {
			f.Close()
			log.Warnf("%s does not parse as an RPM (from %s): %v", p.Dest, p.URL, err)
			continue
		}
		if nevra, err := rpm.Header.GetNEVRA(); err == nil {
			log.Debugf("verified %s (%s)", p.Dest, nevra.String())
		}
		f.Close()
		ok++
	}
	return ok
}
