package worker

import (
	"context"
	"sort"

	"runledger/internal/extract"
	"runledger/internal/model"
)

// Extractor turns one source record into claims. Satisfied by
// extract.Extractor; an interface here so batch tests can stub it.
type Extractor interface {
	Extract(rec model.SourceRecord) extract.Result
}

// RecordJob extracts claims from a single catalogue record.
type RecordJob struct {
	Index     int // Position in the input catalogue
	Record    model.SourceRecord
	Extractor Extractor
}

// Execute runs the extraction for one record.
func (j *RecordJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &RecordResult{Index: j.Index, RecordID: j.Record.ID, Err: err}
	}
	res := j.Extractor.Extract(j.Record)
	return &RecordResult{
		Index:        j.Index,
		RecordID:     j.Record.ID,
		Claims:       res.Claims,
		SkippedTitle: res.SkippedTitle,
	}
}

// RecordResult is the outcome of extracting one record.
type RecordResult struct {
	Index        int
	RecordID     string
	Claims       []model.Claim
	SkippedTitle string
	Err          error
}

// GetError returns the job's error, if any.
func (r *RecordResult) GetError() error {
	return r.Err
}

// BatchExtractor fans record extraction out over a worker pool and
// returns the results in catalogue order, so downstream dedup stays
// deterministic regardless of which worker finished first.
type BatchExtractor struct {
	extractor   Extractor
	concurrency int
}

// NewBatchExtractor creates a batch extractor with the given concurrency.
func NewBatchExtractor(extractor Extractor, concurrency int) *BatchExtractor {
	return &BatchExtractor{extractor: extractor, concurrency: concurrency}
}

// ProcessRecords extracts claims from every record concurrently. Results
// come back sorted by catalogue position. Cancelling ctx abandons the
// remaining records; their results are simply absent.
func (b *BatchExtractor) ProcessRecords(ctx context.Context, records []model.SourceRecord) []*RecordResult {
	if len(records) == 0 {
		return []*RecordResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, rec := range records {
		pool.Submit(&RecordJob{Index: i, Record: rec, Extractor: b.extractor})
	}

	results := pool.Wait()

	out := make([]*RecordResult, 0, len(results))
	for _, result := range results {
		out = append(out, result.(*RecordResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
