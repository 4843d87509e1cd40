package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateSKU returns a product code of the form PRD-<6 digits>-<3 digits>,
// taken from the last six digits of the millisecond clock and a random suffix.
func GenerateSKU(now time.Time) string {
	ms := fmt.Sprintf("%06d", now.UnixMilli())
	return fmt.Sprintf("PRD-%s-%03d", ms[len(ms)-6:], rand.Intn(1000))
}

// ResolveImageURL joins a stored relative path onto the storage base URL.
// Absolute URLs are returned untouched.
func ResolveImageURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "data:") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
