// Package fetcher runs one orchestration pass: list N names from the
// remote source, fetch and normalize each one, and keep whatever succeeded.
package fetcher

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pokehub/internal/pokeapi"
	"pokehub/pkg/models"
)

// Source is the remote collaborator. *pokeapi.Client implements it.
type Source interface {
	ListNames(ctx context.Context, limit int) ([]string, error)
	GetDetail(ctx context.Context, name string) ([]byte, error)
}

type Orchestrator struct {
	Source Source
	// Concurrency caps in-flight detail requests. 1 fetches sequentially.
	Concurrency int
	Log         logrus.FieldLogger
}

func NewOrchestrator(src Source, concurrency int, log logrus.FieldLogger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		Source:      src,
		Concurrency: concurrency,
		Log:         log.WithField("component", "fetcher"),
	}
}

// FetchAll returns at most count normalized records in listing order.
// A failed listing yields an empty result; a failed detail fetch or
// normalization drops only that name. Duplicates are passed through.
func (o *Orchestrator) FetchAll(ctx context.Context, count int) []models.Pokemon {
	if count <= 0 {
		return []models.Pokemon{}
	}

	names, err := o.Source.ListNames(ctx, count)
	if err != nil {
		o.Log.WithError(err).WithField("count", count).Warn("listing failed, nothing fetched")
		return []models.Pokemon{}
	}
	if len(names) > count {
		names = names[:count]
	}

	// one slot per name keeps listing order whatever the completion order
	slots := make([]*models.Pokemon, len(names))

	var g errgroup.Group
	g.SetLimit(o.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			p, ok := o.fetchOne(ctx, name)
			if ok {
				slots[i] = &p
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Pokemon, 0, len(names))
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}

	o.Log.WithFields(logrus.Fields{
		"requested": count,
		"listed":    len(names),
		"fetched":   len(out),
	}).Info("orchestration run finished")
	return out
}

func (o *Orchestrator) fetchOne(ctx context.Context, name string) (models.Pokemon, bool) {
	log := o.Log.WithField("name", name)

	raw, err := o.Source.GetDetail(ctx, name)
	if err != nil {
		log.WithError(err).Warn("detail fetch failed, skipping")
		return models.Pokemon{}, false
	}

	p, err := pokeapi.Normalize(raw)
	if err != nil {
		log.WithError(err).Warn("normalize failed, skipping")
		return models.Pokemon{}, false
	}
	return p, true
}
