package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

// Indexer mirrors product writes into the search index. A zero Indexer is
// a no-op so product handlers stay testable without a cluster.
type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

func (ix *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	if ix == nil || ix.Client == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode product %d: %w", p.ID, err)
	}

	res, err := ix.Client.Index(
		ix.Index,
		&buf,
		ix.Client.Index.WithDocumentID(strconv.Itoa(int(p.ID))),
		ix.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (ix *Indexer) DeleteProduct(ctx context.Context, id uint) error {
	if ix == nil || ix.Client == nil {
		return nil
	}

	res, err := ix.Client.Delete(
		ix.Index,
		strconv.Itoa(int(id)),
		ix.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product %d from index: %w", id, err)
	}
	defer res.Body.Close()

	// A document that was never indexed is already gone.
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product %d from index: %s", id, res.Status())
	}
	return nil
}
