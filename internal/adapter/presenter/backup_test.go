package presenter

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderRecordCounts(t *testing.T) {
	var buf bytes.Buffer
	RenderRecordCounts(&buf, []RecordCount{{Type: "course", Rows: 1}, {Type: "assessment", Rows: 12}})
	out := buf.String()
	for _, want := range []string{"course", "assessment", "12", "13"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
