package stats

import "testing"

func TestTableAlignsColumns(t *testing.T) {
	tbl := newTable(
		column{title: "Words", right: true},
		column{title: "Generated", right: true},
		column{title: "Share", right: true},
	)
	tbl.addRow("1", "12", "0.10%")
	tbl.addRow("2", "11,988", "99.90%")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Words  Generated   Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "    1         12   0.10%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "    2     11,988  99.90%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableWideRunes(t *testing.T) {
	tbl := newTable(column{title: "Source"}, column{title: "N", right: true})
	tbl.addRow("词表.txt", "1")
	tbl.addRow("a", "22")

	lines := tbl.lines()
	if lines[1] != "词表.txt   1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "a         22" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestTableTruncatesToMax(t *testing.T) {
	tbl := newTable(column{title: "Sources", max: 8}, column{title: "N"})
	tbl.addRow("abcdefghijkl", "1")
	tbl.addRow("short", "2")

	lines := tbl.lines()
	if lines[1] != "abcdefg…  1" {
		t.Fatalf("unexpected truncated row: %q", lines[1])
	}
	if lines[2] != "short     2" {
		t.Fatalf("unexpected short row: %q", lines[2])
	}
}

func TestTableMissingCells(t *testing.T) {
	tbl := newTable(column{title: "A"}, column{title: "B", right: true})
	tbl.addRow("x")
	lines := tbl.lines()
	if lines[1] != "x" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestTableWithoutColumns(t *testing.T) {
	if lines := newTable().lines(); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
