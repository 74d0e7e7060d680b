package yahoo

import "testing"

func TestDiffMemoSuppressesRepeatedValue(t *testing.T) {
	m := newDiffMemo()
	if !m.shouldEmit(true, "AAPL", 100.0) {
		t.Error("first observation should always emit")
	}
	if m.shouldEmit(true, "AAPL", 100.0) {
		t.Error("repeated identical value should be suppressed under diff_only")
	}
	if !m.shouldEmit(true, "AAPL", 101.0) {
		t.Error("changed value should emit")
	}
}

func TestDiffMemoAlwaysEmitsWhenDiffOnlyDisabled(t *testing.T) {
	m := newDiffMemo()
	m.shouldEmit(false, "AAPL", 100.0)
	if !m.shouldEmit(false, "AAPL", 100.0) {
		t.Error("diff_only=false should always emit regardless of repeats")
	}
}

func TestDecodeStreamFrameRejectsNonPricingFrame(t *testing.T) {
	if _, ok := decodeStreamFrame([]byte(`{"not":"a message field"}`)); ok {
		t.Error("expected false for a frame with no message field")
	}
	if _, ok := decodeStreamFrame([]byte(`not even json`)); ok {
		t.Error("expected false for malformed JSON")
	}
}
