package session

import (
	"context"
	"fmt"
	"time"

	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/document"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// batchResult holds everything one successful submission produced.
type batchResult struct {
	content     string
	readability []models.ReadabilityItem
	tone        models.ToneVoice
	cliches     []models.Cliche
}

// runBatch corrects grammar first, then runs the three analyses on the
// corrected text concurrently. Any failure fails the whole batch and
// cancels the calls still in flight.
func runBatch(ctx context.Context, a analysis.Analyzer, content string) (*batchResult, error) {
	start := time.Now()

	corrected, err := a.CorrectGrammar(ctx, document.PlainText(content))
	if err != nil {
		return nil, fmt.Errorf("grammar correction failed: %w", err)
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Grammar correction done")

	res := &batchResult{content: document.TextToHTML(corrected)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := a.AnalyzeReadability(gctx, corrected)
		if err != nil {
			return fmt.Errorf("readability analysis failed: %w", err)
		}
		res.readability = items
		return nil
	})
	g.Go(func() error {
		tv, err := a.AnalyzeToneVoice(gctx, corrected)
		if err != nil {
			return fmt.Errorf("tone and voice analysis failed: %w", err)
		}
		res.tone = tv
		return nil
	})
	g.Go(func() error {
		items, err := a.FindCliches(gctx, corrected)
		if err != nil {
			return fmt.Errorf("cliche analysis failed: %w", err)
		}
		res.cliches = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("Analysis batch done")
	return res, nil
}
