package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

func Test_DocumentsIngestedCounterIncremented(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.DocumentsIngestedTotal.Inc()
	m.DocumentsIngestedTotal.Inc()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, mf := range mfs {
		if mf.GetName() == "docsearch_ingest_documents_total" {
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
				t.Errorf("got %v, want 2", got)
			}
			return
		}
	}
	t.Error("docsearch_ingest_documents_total not found")
}

func Test_SkippedFilesPartitionedByReason(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.SkippedFilesTotal.WithLabelValues("pdf_parse").Inc()
	m.SkippedFilesTotal.WithLabelValues("ocr_failed").Inc()
	m.SkippedFilesTotal.WithLabelValues("pdf_parse").Inc()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "docsearch_ingest_skipped_files_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "reason" {
					found[lp.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}

	if found["pdf_parse"] != 2 {
		t.Errorf("pdf_parse count = %v, want 2", found["pdf_parse"])
	}
	if found["ocr_failed"] != 1 {
		t.Errorf("ocr_failed count = %v, want 1", found["ocr_failed"])
	}
}
