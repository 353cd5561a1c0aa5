package existdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExist emulates the slice of the eXist-db REST contract the repository
// depends on: path-addressed GET/PUT/DELETE/HEAD plus query POST to the base.
type fakeExist struct {
	mu          sync.Mutex
	collections map[string]bool
	documents   map[string]string
	requests    []string // "METHOD path" in arrival order
	queryBody   string
	queryResult string
}

func newFakeExist() *fakeExist {
	return &fakeExist{
		collections: map[string]bool{},
		documents:   map[string]string{},
		queryResult: `<exist:result xmlns:exist="http://exist.sourceforge.net/NS/exist"/>`,
	}
}

func (f *fakeExist) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		path := strings.Trim(r.URL.Path, "/")
		f.requests = append(f.requests, r.Method+" "+path)

		switch r.Method {
		case http.MethodPost:
			body := readAll(r)
			f.queryBody = body
			w.Header().Set("Content-Type", contentTypeXML)
			fmt.Fprint(w, f.queryResult)

		case http.MethodPut:
			body := readAll(r)
			if body == collectionDescriptor {
				f.collections[path] = true
			} else {
				f.documents[path] = body
			}
			w.WriteHeader(http.StatusCreated)

		case http.MethodHead:
			if _, ok := f.documents[path]; ok {
				return
			}
			if f.collections[path] {
				return
			}
			w.WriteHeader(http.StatusNotFound)

		case http.MethodGet:
			if content, ok := f.documents[path]; ok {
				fmt.Fprint(w, content)
				return
			}
			if f.collections[path] {
				fmt.Fprint(w, f.listing(path))
				return
			}
			w.WriteHeader(http.StatusNotFound)

		case http.MethodDelete:
			if _, ok := f.documents[path]; ok {
				delete(f.documents, path)
				return
			}
			if f.collections[path] {
				delete(f.collections, path)
				for doc := range f.documents {
					if strings.HasPrefix(doc, path+"/") {
						delete(f.documents, doc)
					}
				}
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeExist) listing(collection string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<exist:result xmlns:exist=%q><exist:collection name=%q>`,
		ExistNamespace, "/db/"+collection)
	for doc := range f.documents {
		if rest, ok := strings.CutPrefix(doc, collection+"/"); ok && !strings.Contains(rest, "/") {
			fmt.Fprintf(&b, `<exist:resource name=%q/>`, rest)
		}
	}
	b.WriteString(`</exist:collection></exist:result>`)
	return b.String()
}

func readAll(r *http.Request) string {
	body, _ := io.ReadAll(r.Body)
	return string(body)
}

func newTestRepository(t *testing.T) (*Repository, *fakeExist) {
	t.Helper()

	fake := newFakeExist()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	return NewRepository(client, hclog.NewNullLogger()), fake
}

func TestRepository_PutMaterializesCollection(t *testing.T) {
	repo, fake := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei/>"))

	assert.True(t, fake.collections["texts"])
	assert.Equal(t, "<tei/>", fake.documents["texts/poem1.xml"])

	// Probe first, create, then write: the side effect is explicit and
	// ordered.
	assert.Equal(t, []string{
		"HEAD texts",
		"PUT texts",
		"PUT texts/poem1.xml",
	}, fake.requests)
}

func TestRepository_EnsureCollectionIsIdempotent(t *testing.T) {
	repo, fake := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureCollection(ctx, "texts"))
	require.NoError(t, repo.EnsureCollection(ctx, "texts"))

	// Second call observed the collection and skipped creation.
	assert.Equal(t, []string{
		"HEAD texts",
		"PUT texts",
		"HEAD texts",
	}, fake.requests)
}

func TestRepository_GetRoundTrip(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei/>"))

	content, err := repo.Get(ctx, "texts", "poem1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<tei/>", content)
}

func TestRepository_GetMissingDocument(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.Get(context.Background(), "texts", "missing.xml")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestRepository_PutOverwrites(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei>old</tei>"))
	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei>new</tei>"))

	content, err := repo.Get(ctx, "texts", "poem1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<tei>new</tei>", content)
}

func TestRepository_DeleteMissingDocument(t *testing.T) {
	repo, _ := newTestRepository(t)

	err := repo.Delete(context.Background(), "texts", "missing.xml")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestRepository_DeleteCollection(t *testing.T) {
	repo, fake := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei/>"))

	deleted, err := repo.DeleteCollection(ctx, "texts")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, fake.documents)

	// Already absent: a negative result, not a fault.
	deleted, err = repo.DeleteCollection(ctx, "texts")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepository_Exists(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	present, err := repo.Exists(ctx, "texts", "poem1.xml")
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei/>"))

	present, err = repo.Exists(ctx, "texts", "poem1.xml")
	require.NoError(t, err)
	assert.True(t, present)
}

func TestRepository_ExistsPropagatesNon404Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	repo := NewRepository(client, hclog.NewNullLogger())

	_, err = repo.Exists(context.Background(), "texts", "poem1.xml")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
}

func TestRepository_ListDocuments(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "texts", "poem1.xml", "<tei/>"))
	require.NoError(t, repo.Put(ctx, "texts", "poem2.xml", "<tei/>"))

	names, err := repo.ListDocuments(ctx, "texts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"poem1.xml", "poem2.xml"}, names)
}

func TestRepository_ListDocumentsEmptyCollection(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureCollection(ctx, "texts"))

	names, err := repo.ListDocuments(ctx, "texts")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NotNil(t, names)
}

func TestRepository_ListDocumentsMissingCollection(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.ListDocuments(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestRepository_ListDocumentsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<exist:result xmlns:exist="http://exist.sourceforge.net/NS/exist"><unclosed>`)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	repo := NewRepository(client, hclog.NewNullLogger())

	_, err = repo.ListDocuments(context.Background(), "texts")
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse")
}

func TestRepository_QueryWrapsExpression(t *testing.T) {
	repo, fake := newTestRepository(t)

	result, err := repo.Query(context.Background(), `//tei:TEI/@xml:id`)
	require.NoError(t, err)
	assert.Equal(t, fake.queryResult, result)

	assert.Contains(t, fake.queryBody, `<query xmlns="`+ExistNamespace+`">`)
	assert.Contains(t, fake.queryBody, `<![CDATA[//tei:TEI/@xml:id]]>`)
	assert.Contains(t, fake.queryBody, `<property name="indent" value="yes"/>`)
}

func TestQueryEnvelope_SplitsEmbeddedCDATATerminator(t *testing.T) {
	envelope := queryEnvelope(`x]]>y`)

	// The terminator inside the expression is split across CDATA sections so
	// it stays literal without ending the section early.
	assert.Contains(t, envelope, `<![CDATA[x]]]]><![CDATA[>y]]>`)
}

func TestParseListing(t *testing.T) {
	body := `<exist:result xmlns:exist="http://exist.sourceforge.net/NS/exist">
  <exist:collection name="/db/texts" created="2026-01-05T10:00:00Z">
    <exist:resource name="poem1.xml" created="2026-01-05T10:01:00Z"/>
    <exist:collection name="drafts"/>
    <exist:resource name="poem2.xml"/>
  </exist:collection>
</exist:result>`

	names, err := parseListing([]byte(body))
	require.NoError(t, err)

	// Nested collections are not resources and must not appear.
	assert.Equal(t, []string{"poem1.xml", "poem2.xml"}, names)
}

func TestParseListing_IgnoresForeignNamespaces(t *testing.T) {
	body := `<result xmlns="urn:other"><resource name="rogue.xml"/></result>`

	names, err := parseListing([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, names)
}
