package domain

// HostOutputs are the observable outputs of a converged deployment: the
// public address of the host and the OS image it was created from.
type HostOutputs struct {
	InstanceID    string
	PublicAddress string
	ImageID       string
}

// FieldError describes a single invalid or missing configuration
// parameter. Resolution reports every failing field, not just the first.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}
