package tasks

// TaskSchedulerInterface is consumed by main for lifecycle control and by
// the API layer to enqueue ad-hoc background runs.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
