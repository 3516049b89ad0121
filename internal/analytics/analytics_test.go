package analytics

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRecorder(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := NewLog(zap.New(core))

	rec.DraftCompleted("AB12CD", 3)
	rec.LoadoutChanged("AB12CD", "p1")
	rec.RequisitionChanged("AB12CD", "p1", -25)
	rec.MissionResolved("AB12CD", 4)

	if logs.Len() != 4 {
		t.Fatalf("want 4 records, got %d", logs.Len())
	}
	entries := logs.All()
	if entries[0].Message != "draft_completed" {
		t.Fatalf("first record = %q", entries[0].Message)
	}
	fields := entries[2].ContextMap()
	if fields["lobby"] != "AB12CD" || fields["amount"] != int64(-25) {
		t.Fatalf("requisition fields = %+v", fields)
	}
}

func TestNopRecorderSatisfiesInterface(t *testing.T) {
	var _ Recorder = Nop{}
	var _ Recorder = Log{}
}
