package search

import (
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
)

// NewClient connects to Elasticsearch and verifies the node responds.
func NewClient(url string) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := es.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("ping elasticsearch: %s", res.String())
	}

	logrus.Infof("[Search] Connected to Elasticsearch: url=%s", url)
	return es, nil
}
