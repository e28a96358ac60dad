package args

// Group is a set of declared command-line arguments whose fields can be
// merged with values loaded from a YAML config file. Defaults must return a
// freshly constructed instance of the same concrete type holding the
// compile-time default for every field; the merger compares against it to
// decide which fields the user has explicitly overridden.
type Group interface {
	Defaults() Group
}

// ConfigCarrier is implemented by argument groups that declare the --config
// flag. At most one group per invocation may carry it.
type ConfigCarrier interface {
	ConfigPath() string
}
