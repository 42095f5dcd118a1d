package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forum-importer/core/reconcile"
	"forum-importer/core/utils"
	"forum-importer/feature/zendesk/coerce"
	"forum-importer/feature/zendesk/models"

	"go.uber.org/zap"
)

// Writer persists one staged record given as column → value.
// It reports whether a new record was written (false when the source key
// already exists in the staging store).
type Writer interface {
	Insert(ctx context.Context, kind reconcile.Kind, values map[string]any) (bool, error)
}

// Mapping renames a source field to a staged column.
type Mapping struct {
	Field  string
	Column string
}

// Extractor copies markup records into the staging store.
type Extractor struct {
	writer   Writer
	feedback reconcile.Feedback
	logger   *zap.Logger
}

// NewExtractor creates an extractor writing through w.
func NewExtractor(w Writer, feedback reconcile.Feedback, logger *zap.Logger) *Extractor {
	return &Extractor{writer: w, feedback: feedback, logger: logger}
}

// Extract writes one staged record of kind for every child of the document
// root named entryTag and returns the number of records written.
//
// Each name in fields is looked up as a child element, coerced by its type
// attribute, stored under the name with hyphens turned into underscores, and
// truncated to the column's maximum length. extra maps source fields to
// columns of a different name, e.g. the generic "id" to "user_id".
//
// Any error aborts the call; records written before it stay written.
func (x *Extractor) Extract(ctx context.Context, doc *Document, entryTag string, kind reconcile.Kind, fields []string, extra []Mapping) (int, error) {
	desc, err := models.DescriptorFor(kind)
	if err != nil {
		return 0, err
	}

	mappings := make([]Mapping, 0, len(fields)+len(extra))
	for _, f := range fields {
		mappings = append(mappings, Mapping{Field: f, Column: ColumnName(f)})
	}
	mappings = append(mappings, extra...)

	for _, m := range mappings {
		if _, ok := desc.Field(m.Column); !ok {
			return 0, fmt.Errorf("%s has no staged column %q (source field %q)", kind, m.Column, m.Field)
		}
	}

	written := 0
	for i, el := range doc.Root.FindAll(entryTag) {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		values, err := buildRecord(el, desc, mappings)
		if err != nil {
			return written, fmt.Errorf("%s record %d: %w", kind, i+1, err)
		}

		inserted, err := x.writer.Insert(ctx, kind, values)
		if err != nil {
			return written, fmt.Errorf("failed to stage %s record %d: %w", kind, i+1, err)
		}
		if inserted {
			written++
			x.feedback.Progress(kind, written)
		} else {
			x.logger.Debug("Record already staged", zap.String("kind", string(kind)), zap.Any("key", values[desc.Key]))
		}
	}

	x.logger.Info("Extraction finished", zap.String("kind", string(kind)), zap.Int("written", written))
	return written, nil
}

func buildRecord(el *Element, desc *models.Descriptor, mappings []Mapping) (map[string]any, error) {
	values := make(map[string]any, len(mappings))

	for _, m := range mappings {
		field := desc.Fields[m.Column]

		var raw *string
		declared := ""
		if child := el.Find(m.Field); child != nil {
			raw = child.Text()
			declared = child.Attr("type")
		}

		value, err := coerce.Coerce(raw, declared)
		if err == nil {
			value, err = coerce.Conform(value, field.Type)
		}
		if err != nil {
			var mfe *coerce.MalformedFieldError
			if errors.As(err, &mfe) {
				mfe.Field = m.Field
			}
			return nil, err
		}
		if value == nil {
			continue
		}

		if s, ok := value.(string); ok {
			value = utils.Truncate(s, field.MaxLength)
		}
		values[m.Column] = value
	}

	if _, ok := values[desc.Key]; !ok {
		return nil, fmt.Errorf("missing source identifier %q", desc.Key)
	}
	return values, nil
}

// ColumnName translates a hyphenated markup field name to a staged column name.
func ColumnName(field string) string {
	return strings.ReplaceAll(field, "-", "_")
}
