package components

import (
	"fmt"
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/models"
	"pgregory.net/rapid"
)

func TestVirtualizer_Visible(t *testing.T) {
	v := Virtualizer{Height: 3}
	vis := v.Visible(10)
	if len(vis) != 3 || vis[0].Index != 0 || vis[2].Offset != 2 {
		t.Errorf("unexpected first window %+v", vis)
	}

	v.ScrollTo(5, 10)
	if v.Offset() != 3 {
		t.Errorf("expected offset 3 to show item 5 last, got %d", v.Offset())
	}
	v.ScrollTo(1, 10)
	if v.Offset() != 1 {
		t.Errorf("expected offset 1 to show item 1 first, got %d", v.Offset())
	}

	v.Scroll(100, 10)
	if v.Offset() != 7 {
		t.Errorf("expected offset clamped to 7, got %d", v.Offset())
	}
	if vis := v.Visible(2); len(vis) != 2 || v.Offset() != 0 {
		t.Errorf("expected a shrinking list to reset the window, got %+v at %d", vis, v.Offset())
	}
	if vis := v.Visible(0); vis != nil {
		t.Errorf("expected nothing visible for an empty list, got %+v", vis)
	}
}

func TestVirtualizer_WindowProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		height := rapid.IntRange(1, 20).Draw(t, "height")
		count := rapid.IntRange(0, 200).Draw(t, "count")
		v := Virtualizer{Height: height}
		v.Scroll(rapid.IntRange(-50, 250).Draw(t, "scroll"), count)

		vis := v.Visible(count)
		if len(vis) != min(height, count) {
			t.Fatalf("expected %d visible items, got %d", min(height, count), len(vis))
		}
		for i, it := range vis {
			if it.Offset != i || it.Index != v.Offset()+i || it.Index >= count {
				t.Fatalf("bad slot %d: %+v", i, it)
			}
		}

		if count > 0 {
			target := rapid.IntRange(0, count-1).Draw(t, "target")
			v.ScrollTo(target, count)
			if target < v.Offset() || target >= v.Offset()+height {
				t.Fatalf("item %d not visible at offset %d", target, v.Offset())
			}
		}
	})
}

func pickerColumns(n int) []models.Column {
	cols := []models.Column{
		{ID: "id", Name: "id", Type: models.ColumnTypeNumber},
		{ID: "email", Name: "email", Type: models.ColumnTypeText},
		{ID: "is_admin", Name: "is_admin", Type: models.ColumnTypeBoolean},
		{ID: "created_at", Name: "created_at", Type: models.ColumnTypeDate},
	}
	for i := 0; i < n; i++ {
		cols = append(cols, models.Column{ID: fmt.Sprintf("extra_%02d", i), Name: fmt.Sprintf("extra_%02d", i), Type: models.ColumnTypeText})
	}
	return cols
}

func TestColumnPicker_SelectsCurrentColumn(t *testing.T) {
	p := NewColumnPicker(pickerColumns(20), "extra_15", 5)
	col, ok := p.Selected()
	if !ok || col.ID != "extra_15" {
		t.Fatalf("expected extra_15 selected, got %+v", col)
	}
	rows := p.Rows()
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if !rows[len(rows)-1].Selected {
		t.Error("expected the selected column scrolled into the last line")
	}
}

func TestColumnPicker_Filter(t *testing.T) {
	p := NewColumnPicker(pickerColumns(3), "", 5)
	if p.Matches() != 7 {
		t.Fatalf("expected every column to match, got %d", p.Matches())
	}

	p.SetQuery("mail")
	if p.Matches() != 1 {
		t.Fatalf("expected 1 match for mail, got %d", p.Matches())
	}
	if col, _ := p.Selected(); col.ID != "email" {
		t.Errorf("expected email, got %s", col.ID)
	}

	p.SetQuery("b:")
	if col, ok := p.Selected(); !ok || col.ID != "is_admin" || p.Matches() != 1 {
		t.Errorf("expected only is_admin for b:, got %d matches", p.Matches())
	}

	p.SetQuery("zzz")
	if _, ok := p.Selected(); ok {
		t.Error("expected no selection without matches")
	}
	if len(p.Rows()) != 0 {
		t.Error("expected no rows")
	}
	p.MoveCursor(1)
}

func TestColumnPicker_TypingRefilters(t *testing.T) {
	p := NewColumnPicker(pickerColumns(3), "created_at", 5)
	for _, k := range []string{"e", "x"} {
		p.Update(keyMsg(k))
	}
	if p.Query() != "ex" {
		t.Fatalf("expected query ex, got %q", p.Query())
	}
	if p.Matches() != 3 {
		t.Errorf("expected the 3 extra columns, got %d", p.Matches())
	}
	if col, _ := p.Selected(); col.ID != "extra_00" {
		t.Errorf("expected the cursor reset to the first match, got %s", col.ID)
	}
}

func TestColumnPicker_Pick(t *testing.T) {
	p := NewColumnPicker(pickerColumns(10), "", 4)
	p.Scroll(2)

	col, ok := p.Pick(1)
	if !ok || col.ID != "created_at" {
		t.Errorf("expected line 1 to hold created_at, got %+v", col)
	}
	if sel, _ := p.Selected(); sel.ID != "created_at" {
		t.Errorf("expected the pick to move the cursor, got %s", sel.ID)
	}
	if _, ok := p.Pick(4); ok {
		t.Error("expected no column below the window")
	}

	p.MoveCursor(-10)
	if sel, _ := p.Selected(); sel.ID != "id" {
		t.Errorf("expected the cursor clamped to the first column, got %s", sel.ID)
	}
	if p.view.Offset() != 0 {
		t.Errorf("expected the window to follow the cursor, got %d", p.view.Offset())
	}
}
