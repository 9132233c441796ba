// Package store is the document store used by the console: schemaless collections of JSON
// documents addressed by id. No multi-document transaction is assumed; stores that can apply
// several updates atomically additionally implement Batcher.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Collections
const (
	Courses      = "courses"
	Sections     = "sections"
	Lessons      = "lessons"
	Quizzes      = "quizzes"
	QuizAttempts = "quizAttempts"
	Progress     = "progress"
	Enrollments  = "enrollments"
	Reviews      = "reviews"
	Orders       = "orders"
)

var ErrNotFound = errors.New("document not found")

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string
	Value interface{}
}

func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

func Asc(field string) Ordering  { return Ordering{Field: field, Ascending: true} }
func Desc(field string) Ordering { return Ordering{Field: field} }

// Patch holds top-level document fields to overwrite.
type Patch map[string]interface{}

// Mutation is one document update of a batch.
type Mutation struct {
	Collection string
	ID         string
	Patch      Patch
}

type Store interface {
	// Create stores doc and returns its id. A non-empty "id" field on doc is kept.
	Create(ctx context.Context, collection string, doc interface{}) (string, error)
	// Get decodes the document into dest or returns ErrNotFound.
	Get(ctx context.Context, collection, id string, dest interface{}) error
	Update(ctx context.Context, collection, id string, patch Patch) error
	Delete(ctx context.Context, collection, id string) error
	// Query decodes every matching document into dest (a pointer to a slice).
	// Without ordering, documents come back in insertion order.
	Query(ctx context.Context, collection string, dest interface{}, filters []Filter, order ...Ordering) error
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
}

// Batcher is implemented by stores able to apply several updates atomically.
type Batcher interface {
	UpdateBatch(ctx context.Context, mutations []Mutation) error
}

type document map[string]interface{}

// toDocument converts any JSON-serializable value into a document.
func toDocument(v interface{}) (document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	doc := make(document)
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "document must be a JSON object")
	}
	return doc, nil
}

// prepareNew assigns an id to doc unless it already carries one.
func prepareNew(v interface{}) (document, string, error) {
	doc, err := toDocument(v)
	if err != nil {
		return nil, "", err
	}
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
		doc["id"] = id
	}
	return doc, id, nil
}

// normalize returns v as it would read back from a decoded document.
func normalize(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err = json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func (doc document) apply(patch Patch) {
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = normalize(v)
	}
}

func (doc document) matches(filters []Filter) bool {
	for _, f := range filters {
		if !equalValues(doc[f.Field], normalize(f.Value)) {
			return false
		}
	}
	return true
}

func equalValues(a, b interface{}) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string, bool, float64:
		return a == b
	default:
		return fmt.Sprint(av) == fmt.Sprint(b)
	}
}

// compareValues orders nil < bool < number < string. Strings that both parse as
// RFC 3339 timestamps compare as instants.
func compareValues(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		if ta, tb, ok := timestamps(av, bv); ok {
			return ta.Compare(tb)
		}
		return strings.Compare(av, bv)
	}
	return 0
}

// timestamps parses both strings as RFC 3339 times. Encoded time.Time values drop trailing
// zero fractions, so their text does not sort chronologically.
func timestamps(a, b string) (time.Time, time.Time, bool) {
	ta, err := time.Parse(time.RFC3339Nano, a)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	tb, err := time.Parse(time.RFC3339Nano, b)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return ta, tb, true
}

func rank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	}
	return 4
}

func sortDocuments(docs []document, order []Ordering) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, ord := range order {
			c := compareValues(docs[i][ord.Field], docs[j][ord.Field])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

// decodeInto re-encodes src and decodes it into dest.
func decodeInto(src interface{}, dest interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return errors.Wrap(err, "encoding documents")
	}
	return errors.Wrap(json.Unmarshal(raw, dest), "decoding documents")
}
