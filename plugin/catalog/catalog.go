// Package catalog resolves free-text property hints against a listings file.
package catalog

import (
	_ "embed"
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/tourdesk/server/service/tour"
)

//go:embed listings.json
var sampleListings []byte

var (
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
	nonDigit       = regexp.MustCompile(`\D`)
	zpidRun        = regexp.MustCompile(`\d{5,}`)
)

// Address is the structured address of a listing.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zipcode       string `json:"zipcode"`
}

// Listing is one property from the listings file.
type Listing struct {
	Zpid           string
	Name           string
	DisplayAddress string
	DetailURL      string
	Address        Address
}

// UnmarshalJSON accepts zpid (or id) as either a string or a number.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw struct {
		Zpid           json.RawMessage `json:"zpid"`
		ID             json.RawMessage `json:"id"`
		Name           string          `json:"name"`
		DisplayAddress string          `json:"displayAddress"`
		DetailURL      string          `json:"detailUrl"`
		Address        Address         `json:"address"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Zpid = rawID(raw.Zpid)
	if l.Zpid == "" {
		l.Zpid = rawID(raw.ID)
	}
	l.Name = raw.Name
	l.DisplayAddress = raw.DisplayAddress
	l.DetailURL = raw.DetailURL
	l.Address = raw.Address
	return nil
}

func rawID(msg json.RawMessage) string {
	if len(msg) == 0 || string(msg) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}
	return ""
}

// FullAddress joins the structured address parts.
func (l *Listing) FullAddress() string {
	var parts []string
	for _, p := range []string{l.Address.StreetAddress, l.Address.City, l.Address.State, l.Address.Zipcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Label is the human-readable name used in booking summaries.
func (l *Listing) Label() string {
	for _, v := range []string{l.DisplayAddress, l.Name, l.FullAddress()} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Catalog is an immutable index over a set of listings.
type Catalog struct {
	listings []*Listing
	byZpid   map[string]*Listing
	byKey    map[string]*Listing
	bySlug   map[string]*Listing
}

var _ tour.ListingResolver = (*Catalog)(nil)

// Load reads listings from path, or the bundled sample when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(sampleListings)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read listings file %s", path)
	}
	return Parse(data)
}

// Parse builds a Catalog from a JSON array of listings.
func Parse(data []byte) (*Catalog, error) {
	var listings []*Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, errors.Wrap(err, "failed to parse listings")
	}

	c := &Catalog{
		byZpid: make(map[string]*Listing),
		byKey:  make(map[string]*Listing),
		bySlug: make(map[string]*Listing),
	}
	for _, l := range listings {
		if l == nil {
			continue
		}
		c.listings = append(c.listings, l)
		if l.Zpid != "" {
			if _, ok := c.byZpid[l.Zpid]; !ok {
				c.byZpid[l.Zpid] = l
			}
		}
		for _, hint := range []string{l.DisplayAddress, l.Name, l.DetailURL, l.FullAddress()} {
			c.register(hint, l)
		}
	}
	return c, nil
}

// register indexes hint for l; the first listing to claim a key keeps it.
func (c *Catalog) register(hint string, l *Listing) {
	lower := strings.ToLower(strings.TrimSpace(hint))
	if lower == "" {
		return
	}
	if _, ok := c.byKey[lower]; !ok {
		c.byKey[lower] = l
	}
	if s := slugify(lower); s != "" {
		if _, ok := c.bySlug[s]; !ok {
			c.bySlug[s] = l
		}
	}
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}

// Lookup finds the listing a hint refers to: exact text, then slug, then the
// hint's digits as a zpid, then any five-or-more digit run in the hint.
func (c *Catalog) Lookup(hint string) (*Listing, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return nil, false
	}
	lower := strings.ToLower(hint)
	if l, ok := c.byKey[lower]; ok {
		return l, true
	}
	if l, ok := c.bySlug[slugify(lower)]; ok {
		return l, true
	}
	if digits := nonDigit.ReplaceAllString(hint, ""); digits != "" {
		if l, ok := c.byZpid[digits]; ok {
			return l, true
		}
	}
	for _, run := range zpidRun.FindAllString(hint, -1) {
		if l, ok := c.byZpid[run]; ok {
			return l, true
		}
	}
	return nil, false
}

// Resolve returns the first listing any hint matches, falling back to the raw hints.
func (c *Catalog) Resolve(hints ...string) tour.ListingContext {
	fallback := tour.HintsListing(hints...)
	for _, h := range hints {
		l, ok := c.Lookup(h)
		if !ok {
			continue
		}
		out := tour.ListingContext{Address: l.Label(), Zpid: l.Zpid}
		if out.Address == "" {
			out.Address = fallback.Address
		}
		if out.Zpid == "" {
			out.Zpid = fallback.Zpid
		}
		return out
	}
	return fallback
}

func slugify(value string) string {
	return strings.Trim(nonSlugPattern.ReplaceAllString(strings.ToLower(value), "-"), "-")
}
