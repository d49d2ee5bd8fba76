package normalize

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/envelope"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism is used by FanOut if no positive parallelism is given
const DefaultParallelism = 4

// FetchFunc fetches the flattened properties of a single child
type FetchFunc func(ctx context.Context, child *envelope.ObjectRecord) (map[string]string, error)

// FanOut calls fetch once per child with at most parallelism calls in flight and merges the results into records.
// A child whose fetch fails is left out, so N attempted fetches with M failures yield N-M records.
// The records keep the order of the children.
func FanOut(ctx context.Context, children []*envelope.ObjectRecord, parallelism int, fetch FetchFunc) []*Record {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	slots := make([]*Record, len(children))
	group := new(errgroup.Group)
	group.SetLimit(parallelism)
	for i, child := range children {
		i, child := i, child
		group.Go(func() error {
			props, err := fetch(ctx, child)
			if err != nil {
				log.Debug().Err(err).Str("uid", child.UID).Msg("skipping child whose property fetch failed")
				return nil
			}
			if props == nil {
				props = map[string]string{}
			}
			slots[i] = &Record{
				UID:        child.UID,
				ClassName:  child.ClassName,
				Type:       child.Type,
				Properties: props,
			}
			return nil
		})
	}
	_ = group.Wait()

	records := make([]*Record, 0, len(children))
	for _, record := range slots {
		if record != nil {
			records = append(records, record)
		}
	}
	return records
}
