package exsearch

import "fmt"

// MontageName builds the deterministic, unique-by-construction montage
// label: "<e1p>_<e1m> <> <e2p>_<e2m>".
func MontageName(e1p, e1m, e2p, e2m string) string {
	return fmt.Sprintf("%s_%s <> %s_%s", e1p, e1m, e2p, e2m)
}
