package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
	"github.com/vnykmshr/stepflow/pkg/scheduling/workerpool"
)

func benchPipeline(b *testing.B, cfg pipeline.Config, steps, width int) pipeline.Pipeline {
	b.Helper()

	p, err := pipeline.NewWithConfig(cfg)
	if err != nil {
		b.Fatal(err)
	}
	for s := 0; s < steps; s++ {
		ops := make([]pipeline.Operation, width)
		for w := range ops {
			key := fmt.Sprintf("k%d_%d", s, w)
			ops[w] = pipeline.NewOperation(key, func(context.Context, pipeline.Args) (pipeline.Result, error) {
				return pipeline.Merge(map[string]any{key: w}), nil
			}, "k0_0")
		}
		p.Add(pipeline.Continue, ops...)
	}
	return p
}

func BenchmarkPerform(b *testing.B) {
	for _, width := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("width=%d", width), func(b *testing.B) {
			p := benchPipeline(b, pipeline.Config{}, 4, width)
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := p.Perform(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPerformWorkerPool(b *testing.B) {
	pool := workerpool.New(8, 64)
	defer func() { <-pool.Shutdown() }()

	p := benchPipeline(b, pipeline.Config{WorkerPool: pool}, 4, 8)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.Perform(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
