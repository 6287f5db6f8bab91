// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(WatchFailedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), WatchFailedId)
	}
	for i, is := range values {
		if is.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), i+1)
		}
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no markdown", is.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	if Get(RecursionLimitId) == nil {
		t.Fatal("Get(RecursionLimitId) = nil")
	}
	if Get(Id(999)) != nil {
		t.Error("Get(999) should be nil")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	out, err := Get(ScriptNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "Script not found") {
		t.Errorf("Render() = %q, want the heading text", out)
	}
}
