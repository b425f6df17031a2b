package domain

import "strings"

// Slugify turns a product name into its URL slug: lower case, spaces to
// dashes, "&" spelled out.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return strings.ReplaceAll(slug, "&", "and")
}
