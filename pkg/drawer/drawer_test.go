package drawer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/stepflow/internal/testutil"
	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

func samplePipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()

	p := pipeline.New()
	p.Add(pipeline.StartOver, testutil.Resolve("login", pipeline.Merge(map[string]any{"cookie": "abc"}))).
		Add(pipeline.Continue,
			testutil.Resolve("upload", pipeline.Scalar("id-1")),
			testutil.Reject("audit", errors.New("offline")),
		).
		Add(pipeline.Retry)
	require.NoError(t, p.Perform(context.Background()))
	return p
}

func TestDrawContainsEveryOperation(t *testing.T) {
	p := samplePipeline(t)

	var buf bytes.Buffer
	require.NoError(t, Draw(&buf, p.Steps(), p.TimeTable(), Options{Title: "upload flow"}))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	for _, want := range []string{
		`"1.1 login"`, `"2.1 upload"`, `"2.2 audit"`,
		`"step 1"`, `"step 2"`, `"step 3"`,
		`"start"`, `"end"`,
		`label="upload flow"`, `rankdir="LR"`,
		`style="dashed"`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestDrawWithoutTimings(t *testing.T) {
	steps := []pipeline.Step{{Policy: pipeline.Continue, Operations: []pipeline.Operation{
		testutil.Resolve("only", pipeline.Empty()),
	}}}

	var buf bytes.Buffer
	require.NoError(t, Draw(&buf, steps, nil, Options{RankDir: "TB"}))

	assert.Contains(t, buf.String(), `"1.1 only"`)
	assert.Contains(t, buf.String(), `rankdir="TB"`)
	assert.NotContains(t, buf.String(), "fontcolor")
}

func TestHeatmap(t *testing.T) {
	heat, err := heatmap(pipeline.TimeTable{
		"fast": time.Millisecond,
		"mid":  2 * time.Millisecond,
		"slow": 3 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.True(t, strings.EqualFold("#0000f0", heat[time.Millisecond]), heat[time.Millisecond])
	assert.True(t, strings.EqualFold("#f00000", heat[3*time.Millisecond]), heat[3*time.Millisecond])
	assert.Len(t, heat, 3)

	single, err := heatmap(pipeline.TimeTable{"a": time.Second})
	require.NoError(t, err)
	assert.True(t, strings.EqualFold("#f00000", single[time.Second]), single[time.Second])
}

func TestDrawFile(t *testing.T) {
	p := samplePipeline(t)
	path := filepath.Join(t.TempDir(), "flow.dot")

	require.NoError(t, DrawFile(path, p, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2.2 audit"`)
}

func TestDrawFileBadPath(t *testing.T) {
	err := DrawFile(filepath.Join(t.TempDir(), "missing", "flow.dot"), pipeline.New(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to create file")
}

func TestDrawWriteError(t *testing.T) {
	err := Draw(testutil.FailingWriter{Err: errors.New("disk full")}, nil, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to render dot")
}
