package existdb

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ExistNamespace is the XML namespace eXist-db uses for its REST responses
// and query envelopes. Centralized here to avoid magic strings.
const ExistNamespace = "http://exist.sourceforge.net/NS/exist"

// collectionDescriptor is the minimal body that materializes a collection
// when PUT to the collection path.
const collectionDescriptor = `<collection xmlns="http://exist-db.org/collection-config/1.0"/>`

const contentTypeXML = "application/xml"

// Repository implements collection and document primitives on top of the
// Client. It owns envelope construction for query execution and parsing of
// listing responses, and nothing else: non-2xx statuses are passed upward as
// *StatusError without interpretation, except where "absent" is an expected
// outcome (EnsureCollection, DeleteCollection, Exists), which locally absorb
// a 404 into a boolean.
type Repository struct {
	client *Client
	log    hclog.Logger
}

// NewRepository creates a repository over the given client.
func NewRepository(client *Client, log hclog.Logger) *Repository {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Repository{
		client: client,
		log:    log.Named("existdb"),
	}
}

// Compile-time check - the repository satisfies the Store contract the
// service depends on.
var _ Store = (*Repository)(nil)

// Get retrieves a document's content. Any non-2xx status, including 404,
// surfaces as a *StatusError for the service layer to interpret.
func (r *Repository) Get(ctx context.Context, collection, name string) (string, error) {
	resp, err := r.client.Get(ctx, documentPath(collection, name))
	if err != nil {
		return "", fmt.Errorf("failed to get document: %w", err)
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error getting document",
			"collection", collection, "name", name, "status", resp.StatusCode)
		return "", err
	}

	return string(resp.Body), nil
}

// Put saves a document, overwriting unconditionally if it already exists
// (the store's native semantics; create-must-not-overwrite is enforced by
// the Service). The parent collection is materialized first if absent —
// a visible side effect: a failed write can leave a fresh empty collection
// behind.
func (r *Repository) Put(ctx context.Context, collection, name, content string) error {
	if err := r.EnsureCollection(ctx, collection); err != nil {
		return err
	}

	resp, err := r.client.Put(ctx, documentPath(collection, name), []byte(content), contentTypeXML)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error putting document",
			"collection", collection, "name", name, "status", resp.StatusCode)
		return err
	}

	r.log.Debug("document saved", "collection", collection, "name", name)
	return nil
}

// Delete removes a document. A 404 surfaces as a *StatusError; whether that
// is an error is the service's call.
func (r *Repository) Delete(ctx context.Context, collection, name string) error {
	resp, err := r.client.Delete(ctx, documentPath(collection, name))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error deleting document",
			"collection", collection, "name", name, "status", resp.StatusCode)
		return err
	}

	r.log.Debug("document deleted", "collection", collection, "name", name)
	return nil
}

// EnsureCollection makes sure a collection exists, creating it only when the
// existence probe says it is absent. Check-then-act: two concurrent callers
// may both observe absence and both PUT the descriptor; the store treats the
// redundant create as an overwrite, so the race must not fail this method.
func (r *Repository) EnsureCollection(ctx context.Context, name string) error {
	present, err := r.collectionExists(ctx, name)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	r.log.Info("collection not found, creating it", "collection", name)
	resp, err := r.client.Put(ctx, name, []byte(collectionDescriptor), contentTypeXML)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error creating collection", "collection", name, "status", resp.StatusCode)
		return err
	}

	return nil
}

// DeleteCollection removes a collection and all its contents. Returns false
// without error when the collection is already absent.
func (r *Repository) DeleteCollection(ctx context.Context, name string) (bool, error) {
	resp, err := r.client.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		r.log.Warn("attempted to delete non-existent collection", "collection", name)
		return false, nil
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error deleting collection", "collection", name, "status", resp.StatusCode)
		return false, err
	}

	r.log.Info("collection deleted", "collection", name)
	return true, nil
}

// Exists probes for a document with a lightweight HEAD request. 404 means
// false; any other non-2xx status is a real problem and propagates.
func (r *Repository) Exists(ctx context.Context, collection, name string) (bool, error) {
	return r.head(ctx, documentPath(collection, name))
}

// collectionExists probes for a collection with a HEAD request.
func (r *Repository) collectionExists(ctx context.Context, name string) (bool, error) {
	return r.head(ctx, name)
}

func (r *Repository) head(ctx context.Context, path string) (bool, error) {
	resp, err := r.client.Head(ctx, path)
	if err != nil {
		return false, fmt.Errorf("existence probe failed: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := statusErr(resp); err != nil {
		return false, err
	}

	return true, nil
}

// ListDocuments retrieves the names of all documents within a collection by
// parsing the store's listing response. A 404 (collection absent) surfaces
// as a *StatusError; a malformed body surfaces as a parse error.
func (r *Repository) ListDocuments(ctx context.Context, collection string) ([]string, error) {
	resp, err := r.client.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error listing documents", "collection", collection, "status", resp.StatusCode)
		return nil, err
	}

	names, err := parseListing(resp.Body)
	if err != nil {
		r.log.Error("failed to parse listing response", "collection", collection, "error", err)
		return nil, err
	}

	return names, nil
}

// Query wraps an XQuery expression in the store's request envelope and POSTs
// it to the base URL. The response body is returned raw, unparsed.
func (r *Repository) Query(ctx context.Context, expression string) (string, error) {
	resp, err := r.client.Post(ctx, "", []byte(queryEnvelope(expression)), contentTypeXML)
	if err != nil {
		return "", fmt.Errorf("failed to execute query: %w", err)
	}
	if err := statusErr(resp); err != nil {
		r.log.Error("error executing query", "status", resp.StatusCode)
		return "", err
	}

	r.log.Debug("query executed")
	return string(resp.Body), nil
}

// statusErr converts a non-2xx response into a *StatusError.
func statusErr(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

// queryEnvelope builds the XML request body the store requires for query
// execution. The expression is carried as literal CDATA text; an embedded
// "]]>" is split across sections so it stays literal without ending the
// CDATA early.
func queryEnvelope(expression string) string {
	escaped := strings.ReplaceAll(expression, "]]>", "]]]]><![CDATA[>")
	return fmt.Sprintf(
		`<query xmlns=%q><text><![CDATA[%s]]></text><properties><property name="indent" value="yes"/></properties></query>`,
		ExistNamespace, escaped)
}

// parseListing extracts the name attribute of every resource element in the
// exist namespace from a collection listing document.
func parseListing(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	names := []string{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse listing response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Space != ExistNamespace || start.Name.Local != "resource" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "name" {
				names = append(names, attr.Value)
				break
			}
		}
	}

	return names, nil
}
