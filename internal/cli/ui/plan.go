package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/schema"
)

// RenderOptions configures plan rendering
type RenderOptions struct {
	NoColor bool
}

// RenderPlans writes an index change report: an overview table of every
// collection, then a diff of the out-of-sync ones.
func RenderPlans(w io.Writer, plans []schema.IndexPlan, opts *RenderOptions) {
	noColor := opts != nil && opts.NoColor

	overview := NewTable(w, []string{"COLLECTION", "DOCUMENT", "CREATE", "DROP"}, &TableOptions{NoColor: noColor})
	for _, plan := range plans {
		overview.AddRow(plan.Collection, plan.Document,
			strconv.Itoa(len(plan.Create)), strconv.Itoa(len(plan.Drop)))
	}
	overview.Render()

	headerColor := color.New(color.Bold)
	createColor := color.New(color.FgGreen)
	dropColor := color.New(color.FgRed)
	if noColor {
		headerColor.DisableColor()
		createColor.DisableColor()
		dropColor.DisableColor()
	}

	for _, plan := range plans {
		if plan.InSync() {
			continue
		}

		fmt.Fprintln(w)
		headerColor.Fprintf(w, "%s (%s)\n", plan.Collection, plan.Document)
		for _, idx := range plan.Drop {
			dropColor.Fprintf(w, "  - %s  %s\n", idx.Name(), FormatKeys(idx.Key))
		}
		for _, idx := range plan.Create {
			name := idx.Name()
			if name == "" {
				name = database.DefaultIndexName(idx.Keys)
			}
			createColor.Fprintf(w, "  + %s  %s\n", name, FormatKeys(idx.Keys))
		}
	}
}

// FormatKeys renders an index key pattern the way the mongo shell prints
// one, preserving key order.
func FormatKeys(keys bson.D) string {
	var b strings.Builder
	b.WriteString("{")
	for i, elem := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		switch v := elem.Value.(type) {
		case string:
			fmt.Fprintf(&b, "%s: %q", elem.Key, v)
		default:
			fmt.Fprintf(&b, "%s: %v", elem.Key, v)
		}
	}
	b.WriteString("}")
	return b.String()
}
