package dispatch

import (
	"bytes"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/wordcomb/internal/catalog"
	"github.com/verte-zerg/wordcomb/internal/output"
	"github.com/verte-zerg/wordcomb/internal/pool"
	"github.com/verte-zerg/wordcomb/internal/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, cat *catalog.Catalog, minChars, maxChars int, opts ...Option) (Result, []string) {
	t.Helper()
	var buf bytes.Buffer
	sink := output.NewSink(&buf)
	p := pool.New(4)
	res := New(cat, p, sink, opts...).Run(minChars, maxChars)
	p.Close()
	require.NoError(t, sink.Close())

	text := strings.TrimSuffix(buf.String(), "\n")
	if text == "" {
		return res, nil
	}
	lines := strings.Split(text, "\n")
	sort.Strings(lines)
	return res, lines
}

// enumerate lists every ordered word sequence within the length range by
// plain recursion, honoring caps.
func enumerate(cat *catalog.Catalog, minChars, maxChars int) []string {
	var out []string
	used := make([]int, cat.Len())
	var walk func(prefix string, length, words int)
	walk = func(prefix string, length, words int) {
		if words > 0 && length >= minChars && length <= maxChars {
			out = append(out, prefix)
		}
		if words == maxChars {
			return
		}
		for i, e := range cat.Entries() {
			if length+e.Len > maxChars {
				continue
			}
			if e.Cap != 0 && used[i] >= int(e.Cap) {
				continue
			}
			used[i]++
			walk(prefix+e.Text, length+e.Len, words+1)
			used[i]--
		}
	}
	walk("", 0, 0)
	sort.Strings(out)
	return out
}

func TestRunTwoWordScenario(t *testing.T) {
	cat := catalog.Of(
		catalog.Entry{Text: "ab", Cap: 1},
		catalog.Entry{Text: "cd", Cap: 1},
	)
	res, lines := run(t, cat, 4, 4)
	assert.Equal(t, []string{"abcd", "cdab"}, lines)
	assert.Equal(t, uint64(2), res.Generated)
	assert.Equal(t, int64(10), res.Bytes)
	assert.Equal(t, 4, res.Tasks)
	assert.Equal(t, []uint64{0, 2}, res.Levels)
}

func TestRunMatchesEnumeration(t *testing.T) {
	cat := catalog.New()
	for _, w := range []string{"a", "Go", "pw", "123", "!x"} {
		cat.AddWord(w, 2)
	}
	cat.AddWord("z", 0)
	cat.Finalize()

	res, lines := run(t, cat, 3, 6)
	want := enumerate(cat, 3, 6)
	require.Equal(t, want, lines)
	assert.Equal(t, uint64(len(lines)), res.Generated)

	var sum uint64
	for _, n := range res.Levels {
		sum += n
	}
	assert.Equal(t, res.Generated, sum)
}

func TestRunEmptyCatalog(t *testing.T) {
	res, lines := run(t, catalog.Of(), 1, 5)
	assert.Empty(t, lines)
	assert.Zero(t, res.Generated)
	assert.Zero(t, res.Tasks)
}

func TestRunFinalizesCatalog(t *testing.T) {
	cat := catalog.New()
	cat.AddWord("abc", 1)
	cat.AddWord("abc", 1)
	res, lines := run(t, cat, 3, 3)
	assert.Equal(t, []string{"Abc", "abc"}, lines)
	assert.Equal(t, uint64(2), res.Generated)
}

func TestRunReportsProgress(t *testing.T) {
	cat := catalog.Of(
		catalog.Entry{Text: "a", Cap: 0},
		catalog.Entry{Text: "b", Cap: 0},
		catalog.Entry{Text: "c", Cap: 0},
	)
	var calls atomic.Int64
	var sawLast atomic.Bool
	res, _ := run(t, cat, 1, 3, WithProgress(func(done, total int) {
		calls.Add(1)
		assert.Equal(t, 9, total)
		if done == total {
			sawLast.Store(true)
		}
	}))
	assert.Equal(t, int64(res.Tasks), calls.Load())
	assert.True(t, sawLast.Load())
	assert.Equal(t, uint64(3+9+27), res.Generated)
}

func TestRunLogsTasks(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cat := catalog.Of(catalog.Entry{Text: "ab", Cap: 1})
	_, lines := run(t, cat, 2, 2, WithLogger(zap.New(core)))

	assert.Equal(t, []string{"ab"}, lines)
	assert.Equal(t, 1, logs.FilterMessage("start task").Len())
	finished := logs.FilterMessage("finish task").All()
	require.Len(t, finished, 1)
	for _, entry := range finished {
		assert.Equal(t, "ab", entry.ContextMap()["word"])
	}
}

func TestMaxLevels(t *testing.T) {
	tests := []struct {
		words, shortest, maxChars, want int
	}{
		{0, 0, 10, 0},
		{3, 1, 5, 5},
		{3, 2, 5, 2},
		{3, 6, 5, 0},
		{3, 0, 4, 4},
		{3, 4, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maxLevels(tt.words, tt.shortest, tt.maxChars), "%+v", tt)
	}
}

func TestRunLargeMaxSizesByShortestWord(t *testing.T) {
	cat := catalog.Of(catalog.Entry{Text: "abcdef", Cap: 1})
	res, lines := run(t, cat, 1, 1<<30)
	assert.Equal(t, []string{"abcdef"}, lines)
	assert.Equal(t, []uint64{1}, res.Levels)
	assert.Equal(t, 1, res.Tasks)
}

func TestRunKeepsOutputOfPanickingTask(t *testing.T) {
	cat := catalog.Of(catalog.Entry{Text: "ab", Cap: 0})
	var buf bytes.Buffer
	sink := output.NewSink(&buf)
	p := pool.New(2)
	d := New(cat, p, sink)
	d.newSearch = func() searchFunc {
		return func(_, _, _, _ int, emit search.EmitFunc) int {
			emit([]int{0})
			emit([]int{0, 0})
			panic("search failed")
		}
	}
	res := d.Run(2, 4)
	p.Close()
	require.NoError(t, sink.Close())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{"ab", "abab", "ab", "abab"}, lines)
	assert.Equal(t, uint64(len(lines)), res.Generated)
	assert.Equal(t, []uint64{2, 2}, res.Levels)
}
