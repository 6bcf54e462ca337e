package sink

import (
	"bytes"
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
)

func TestWriter_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatJSON)
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), content.Parsed{"id": "a.md", "body": "<p>x</p>"}))
	require.NoError(t, w.Write(context.Background(), content.Parsed{"id": "b.md"}))
	require.NoError(t, w.Close())

	assert.Equal(t, "{\"body\":\"<p>x</p>\",\"id\":\"a.md\"}\n{\"id\":\"b.md\"}\n", buf.String())
	assert.Equal(t, "writer:json", w.Name())
}

func TestWriter_YAMLDocuments(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatYAML)
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), content.Parsed{"id": "a.md"}))
	require.NoError(t, w.Write(context.Background(), content.Parsed{"id": "b.md"}))
	require.NoError(t, w.Close())

	assert.Equal(t, "id: a.md\n---\nid: b.md\n", buf.String())
}

func TestWriter_UnknownFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "xml")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestSQLite_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Write(ctx, content.Parsed{"id": "a.md", "title": "One"}))
	require.NoError(t, s.Write(ctx, content.Parsed{"id": "b.json", "n": 1}))
	require.NoError(t, s.Write(ctx, content.Parsed{"id": "a.md", "title": "Two"}))

	got, err := s.Get(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, content.Parsed{"id": "a.md", "title": "Two"}, got)

	n, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.Count(ctx, ".md")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, "missing.md")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestSQLite_InMemoryRejectsMissingID(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	err = s.Write(context.Background(), content.Parsed{"body": "x"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStore))
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*nats.Msg
	err  error
}

func (f *fakePublisher) PublishMsg(msg *nats.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func TestNATS_PublishesJSONWithHeaders(t *testing.T) {
	pub := &fakePublisher{}
	s := NewNATSWithPublisher(pub, "content.parsed")

	require.NoError(t, s.Write(context.Background(), content.Parsed{"id": "docs/a.md", "title": "A"}))
	require.Len(t, pub.msgs, 1)

	msg := pub.msgs[0]
	assert.Equal(t, "content.parsed", msg.Subject)
	assert.JSONEq(t, `{"id":"docs/a.md","title":"A"}`, string(msg.Data))
	assert.Equal(t, "docs/a.md", msg.Header.Get(HeaderID))
	assert.Equal(t, ".md", msg.Header.Get(HeaderExtension))
	assert.NoError(t, s.Close())
}

func TestNATS_PublishError(t *testing.T) {
	s := NewNATSWithPublisher(&fakePublisher{err: stderrors.New("no responders")}, "x")

	err := s.Write(context.Background(), content.Parsed{"id": "a.md"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryMessaging))
}

type metricsSpy struct {
	metrics.NoopRecorder
	mu     sync.Mutex
	writes map[string][]bool
}

func (r *metricsSpy) IncSinkWrite(sink string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writes == nil {
		r.writes = map[string][]bool{}
	}
	r.writes[sink] = append(r.writes[sink], ok)
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatJSON)
	require.NoError(t, err)
	failing := NewNATSWithPublisher(&fakePublisher{err: stderrors.New("down")}, "x")

	rec := &metricsSpy{}
	m := NewMulti(rec, nil, failing, nil, w)
	assert.Equal(t, 2, m.Len())

	err = m.Write(context.Background(), content.Parsed{"id": "a.md"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"id":"a.md"`)
	assert.Equal(t, map[string][]bool{"nats": {false}, "writer:json": {true}}, rec.writes)
	assert.NoError(t, m.Close())
}
