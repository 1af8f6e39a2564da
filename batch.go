package fhirnavigator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gofhir/navigator/service"
)

// GetElements resolves many FSH paths against one snapshot id
// concurrently, sharing the navigator's caches. Results are returned
// in input order. The first failing path aborts the batch; there is no
// de-duplication of concurrent identical resolutions.
func (n *Navigator) GetElements(ctx context.Context, snapshotID string, fshPaths []string) ([]*service.ElementDefinition, error) {
	results := make([]*service.ElementDefinition, len(fshPaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.batchLimit)
	for i, p := range fshPaths {
		g.Go(func() error {
			elem, err := n.GetElement(gctx, snapshotID, p)
			if err != nil {
				return err
			}
			results[i] = elem
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
