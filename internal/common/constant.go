package common

const (
	// DefaultNamespacePrefix distinguishes charkeeper namespaces from any
	// other database files sharing the data directory.
	DefaultNamespacePrefix = "charkeeper-"

	// AppName is used for telemetry resources and the CLI banner.
	AppName = "charkeeper"
)
