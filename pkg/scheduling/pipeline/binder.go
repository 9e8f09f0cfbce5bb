package pipeline

// bind resolves op's parameters against a snapshot taken when the step began.
// Missing names bind to nil.
func bind(op Operation, snapshot map[string]any) Args {
	args := make(Args, len(op.Params))
	for i, name := range op.Params {
		args[i] = snapshot[name]
	}
	return args
}
