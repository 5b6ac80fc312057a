// internal/app/system/regions/regions.go

// Package regions holds the curated region codes a profile may carry. The
// codes are the 17 top-level Korean administrative divisions, romanized;
// matching compares them by equality only.
package regions

// All region codes in a stable order.
var All = []string{
	"seoul",
	"busan",
	"daegu",
	"incheon",
	"gwangju",
	"daejeon",
	"ulsan",
	"sejong",
	"gyeonggi",
	"gangwon",
	"chungbuk",
	"chungnam",
	"jeonbuk",
	"jeonnam",
	"gyeongbuk",
	"gyeongnam",
	"jeju",
}

var valid = func() map[string]bool {
	m := make(map[string]bool, len(All))
	for _, r := range All {
		m[r] = true
	}
	return m
}()

// Valid reports whether code is a known region.
func Valid(code string) bool {
	return valid[code]
}
