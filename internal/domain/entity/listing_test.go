package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveImageURL(t *testing.T) {
	l := Listing{Name: "Vintage Desk Lamp", ImageURL: "https://example.com/lamp.jpg"}
	assert.Equal(t, "https://example.com/lamp.jpg", l.EffectiveImageURL())

	l.ImageURL = ""
	assert.Equal(t, "https://placehold.co/400x180/E0E0E0/666666?text=Vintage+Desk+Lamp", l.EffectiveImageURL())
}

func TestSortListingsDescZeroTimestampLast(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ls := []Listing{
		{ID: "b", CreatedAt: t1.Add(time.Hour)},
		{ID: "pending"},
		{ID: "a", CreatedAt: t1},
		{ID: "c", CreatedAt: t1.Add(2 * time.Hour)},
	}
	SortListingsDesc(ls)

	assert.Equal(t, "c", ls[0].ID)
	assert.Equal(t, "b", ls[1].ID)
	assert.Equal(t, "a", ls[2].ID)
	assert.Equal(t, "pending", ls[3].ID)
}
