package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
)

// CatalogService serves the read side of the listing collection.
type CatalogService struct {
	Listings repository.ListingRepository
	ES       *elasticsearch.Client
	ESIndex  string
	Logger   *logrus.Logger
}

func NewCatalogService(listings repository.ListingRepository, es *elasticsearch.Client, index string, logger *logrus.Logger) *CatalogService {
	return &CatalogService{Listings: listings, ES: es, ESIndex: index, Logger: logger}
}

// ListAll returns every listing, newest first.
func (s *CatalogService) ListAll(ctx context.Context) ([]entity.Listing, error) {
	listings, err := s.Listings.List(ctx)
	if err != nil {
		return nil, err
	}
	entity.SortListingsDesc(listings)
	return listings, nil
}

// ListBySeller returns one seller's listings, newest first. A seller with
// no listings yields an empty slice, not an error.
func (s *CatalogService) ListBySeller(ctx context.Context, sellerID string) ([]entity.Listing, error) {
	listings, err := s.Listings.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	entity.SortListingsDesc(listings)
	return listings, nil
}

// SearchListings runs a full-text query over name and description. When no
// search backend is configured it degrades to an empty result.
func (s *CatalogService) SearchListings(ctx context.Context, query string) ([]entity.Listing, error) {
	if s.ES == nil || query == "" {
		return []entity.Listing{}, nil
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"name^2", "description"},
			},
		},
		"size": 50,
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(bytes.NewReader(buf)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.Status())
	}

	var out struct {
		Hits struct {
			Hits []struct {
				Source entity.Listing `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}

	listings := make([]entity.Listing, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		listings = append(listings, h.Source)
	}
	entity.SortListingsDesc(listings)
	return listings, nil
}
