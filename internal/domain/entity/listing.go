package entity

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Listing is a sellable product record. Listings are immutable once created;
// no edit or delete path exists anywhere in the system.
//
// ID and CreatedAt are assigned by the store on insert. A zero CreatedAt on a
// cached copy means the server timestamp has not round-tripped yet.
type Listing struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	SellerID    string    `json:"sellerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

const placeholderImageBase = "https://placehold.co/400x180/E0E0E0/666666?text="

// EffectiveImageURL returns the stored image URL, or a placeholder derived
// from the listing name when none was supplied.
func (l Listing) EffectiveImageURL() string {
	if l.ImageURL != "" {
		return l.ImageURL
	}
	text := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '+'
		}
		return r
	}, l.Name)
	return placeholderImageBase + text
}

// SortListingsDesc orders listings newest first by CreatedAt. Listings whose
// server timestamp has not resolved yet (zero CreatedAt) sort as oldest, so a
// freshly created listing sits at the bottom until the next snapshot carries
// the assigned timestamp.
func SortListingsDesc(ls []Listing) {
	sort.SliceStable(ls, func(i, j int) bool {
		return ls[i].CreatedAt.After(ls[j].CreatedAt)
	})
}
