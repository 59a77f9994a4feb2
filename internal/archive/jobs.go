package archive

import (
	"context"

	"github.com/dmitrijs2005/charkeeper/internal/worker"
)

// ExportJob asks for an archive of one namespace.
type ExportJob struct {
	Namespace string
}

// ExportResult is the single response of an export job.
type ExportResult struct {
	File []byte
	Name string
	Err  error
}

// ImportJob carries the raw archive to import.
type ImportJob struct {
	Data []byte
}

// ImportResult is the single response of an import job. Error holds the
// failure message; Err keeps the original error for errors.Is checks.
type ImportResult struct {
	Success bool
	UUID    string
	Error   string
	Err     error
}

// Runner executes export and import jobs, each on its own one-shot worker.
type Runner struct {
	store Store
}

func NewRunner(st Store) *Runner {
	return &Runner{store: st}
}

// Export runs an export job and waits for its result. If ctx ends first the
// job keeps running and its result is dropped.
func (r *Runner) Export(ctx context.Context, job ExportJob) ExportResult {
	res := worker.Await(ctx, worker.Spawn(ctx, job, r.export))
	if res.Err != nil {
		return ExportResult{Err: res.Err}
	}
	return ExportResult{File: res.Value.Data, Name: res.Value.Name}
}

// Import runs an import job and waits for its result.
func (r *Runner) Import(ctx context.Context, job ImportJob) ImportResult {
	res := worker.Await(ctx, worker.Spawn(ctx, job, r.importArchive))
	if res.Err != nil {
		return ImportResult{Error: res.Err.Error(), Err: res.Err}
	}
	return ImportResult{Success: true, UUID: res.Value}
}

func (r *Runner) export(ctx context.Context, job ExportJob) (*File, error) {
	ns, err := r.store.Open(ctx, job.Namespace)
	if err != nil {
		return nil, err
	}
	defer ns.Close()
	return Export(ctx, ns)
}

func (r *Runner) importArchive(ctx context.Context, job ImportJob) (string, error) {
	return Import(ctx, r.store, job.Data)
}
