package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkordes/festsched/internal/document"
)

// JSON dumps the document model, one tagged object per block.
type JSON struct{}

func (JSON) Ext() string { return FormatJSON }

func (JSON) Render(w io.Writer, doc document.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("render.JSON.Render: %w", err)
	}
	return nil
}
