package tui

import (
	"testing"

	"github.com/noralyzer/noralyzer/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 1 // leading space

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + len(components.TabSeparator)
		}
	}
}

func TestTabAtXOutsideTabs(t *testing.T) {
	a := App{}
	if got := a.tabAtX(0); got != -1 {
		t.Errorf("tabAtX(0) = %d, want -1 (leading space)", got)
	}
	if got := a.tabAtX(500); got != -1 {
		t.Errorf("tabAtX(500) = %d, want -1", got)
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	names := []string{"Overview", "Categories", "Budgets", "Goals", "Trend"}
	w := len(names[tabIdx])
	if tabIdx != activeIdx {
		w += 2 // inactive tabs bracket their shortcut letter
	}
	return w
}
