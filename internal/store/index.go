package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/emarket/emarket/internal/domain/entity"
)

// indexListing mirrors a freshly created listing into Elasticsearch so the
// read API can serve text search. Best effort: the document store remains
// the source of truth.
func (a *Adapter) indexListing(ctx context.Context, l entity.Listing) error {
	if a.ES == nil || a.ESIndex == "" {
		return nil
	}
	b, _ := json.Marshal(l)
	req := esapi.IndexRequest{
		Index:      a.ESIndex,
		DocumentID: l.ID,
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, a.ES)
	if err != nil {
		if a.Logger != nil {
			a.Logger.WithError(err).WithField("listing_id", l.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && a.Logger != nil {
		a.Logger.WithField("status", res.Status()).WithField("listing_id", l.ID).Warn("es index response error")
	}
	return nil
}
