package wm

import "testing"

func TestMarkRoundTrip(t *testing.T) {
	mark := Mark("deepthought", "ws3-001")
	if mark != "_wsmux:deepthought:ws3-001" {
		t.Fatalf("unexpected mark %q", mark)
	}
	id, ok := ParseMark(mark)
	if !ok {
		t.Fatalf("expected mark to parse")
	}
	if id.Host != "deepthought" || id.Socket != "ws3-001" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.Mark() != mark {
		t.Fatalf("identity mark mismatch: %q", id.Mark())
	}
}

func TestParseMarkWithUserHost(t *testing.T) {
	id, ok := ParseMark("_wsmux:alice@deepthought:ws1-002")
	if !ok {
		t.Fatalf("expected user@host mark to parse")
	}
	if id.Host != "alice@deepthought" || id.Socket != "ws1-002" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestParseMarkRejections(t *testing.T) {
	for _, mark := range []string{
		"",
		"wsmux:host:socket",
		"_wsmux:nocolon",
		"_wsmux:host:socket:extra",
		"_wsmux::socket",
		"_wsmux:host:",
		"_other:host:socket",
	} {
		if _, ok := ParseMark(mark); ok {
			t.Fatalf("expected %q to be rejected", mark)
		}
	}
}
