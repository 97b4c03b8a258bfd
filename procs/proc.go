package procs

// Proc is one step of a staged computation over a shared context.
// Run returns the next Proc, or nil when this step is finished.
type Proc[C any] interface {
	Run(ctx C) (Proc[C], error)
}

type Func[C any] func(ctx C) (Proc[C], error)

var _ Proc[any] = Func[any](nil)

func (f Func[C]) Run(ctx C) (Proc[C], error) {
	return f(ctx)
}

// Step adapts a function that never continues.
func Step[C any](fn func(ctx C) error) Proc[C] {
	return Func[C](func(ctx C) (Proc[C], error) {
		return nil, fn(ctx)
	})
}

// Drive runs proc and its continuations until one returns nil.
func Drive[C any](ctx C, proc Proc[C]) error {
	for proc != nil {
		var err error
		proc, err = proc.Run(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}
