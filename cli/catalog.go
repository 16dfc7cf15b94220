package cli

import (
	"encoding/json"
	"os"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/storetest"
)

// catalogFixture is the on-disk shape a --catalog file carries: a flat list
// of topics and the pipelines bound to them, loaded once at startup.
type catalogFixture struct {
	Topics    []*schema.Topic    `json:"topics"`
	Pipelines []*schema.Pipeline `json:"pipelines"`
}

func loadCatalog(path string) (*storetest.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	var fixture catalogFixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeParseError, err)
	}
	return storetest.NewCatalog(fixture.Topics, fixture.Pipelines), nil
}
