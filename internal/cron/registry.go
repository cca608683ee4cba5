package cron

import "context"

// Job is one maintenance task run on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds maintenance jobs keyed by name, in first-registration order.
type Registry struct {
	order []string
	jobs  map[string]Job
}

// NewRegistry builds a registry from jobs. A later job replaces an earlier one
// with the same name but keeps its slot.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{jobs: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register adds job, or swaps it in for an existing job with the same name.
// Nil jobs and jobs without a name are ignored.
func (r *Registry) Register(job Job) {
	if job == nil || job.Name() == "" {
		return
	}
	if r.jobs == nil {
		r.jobs = map[string]Job{}
	}
	if _, ok := r.jobs[job.Name()]; !ok {
		r.order = append(r.order, job.Name())
	}
	r.jobs[job.Name()] = job
}

// Lookup returns the job registered under name.
func (r *Registry) Lookup(name string) (Job, bool) {
	job, ok := r.jobs[name]
	return job, ok
}

// Names lists registered job names in run order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Jobs returns the jobs in run order.
func (r *Registry) Jobs() []Job {
	out := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.jobs[name])
	}
	return out
}
