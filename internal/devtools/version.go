package devtools

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// defectiveMarker matches Chrome 64 products, whose remote API is known to
// break virtual time and layer events. Fixed in 65.
const defectiveMarker = "/64."

// KnownDefective reports whether product is a release known to break rendering.
func KnownDefective(product string) bool {
	return strings.Contains(product, defectiveMarker)
}

// ReportVersion logs the result of Browser.getVersion. Nothing here is fatal:
// a defective release only warns and a failed query skips the check.
func ReportVersion(log *slog.Logger, v *proto.BrowserGetVersionResult, err error) {
	if err != nil || v == nil {
		log.Error("unable to check browser version, skipping compatibility check", "err", err)
		return
	}
	if KnownDefective(v.Product) {
		log.Warn("detected Chrome 64.x: its remote API has a bug that prevents rendering, upgrade to 65 or later",
			"product", v.Product)
	}
	log.Info("connected", "product", v.Product, "protocol", v.ProtocolVersion)
}
