// Package stability turns kernel log lines into per-core instability records.
package stability

// Record is one kernel message attributed to a specific CPU core
type Record struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	// Boot is the journal boot offset: 0 is the current boot, negatives are earlier boots
	Boot    int    `json:"boot" yaml:"boot"`
	Source  string `json:"source" yaml:"source"`
	Message string `json:"message" yaml:"message"`
	Core    int    `json:"core" yaml:"core"`
	Socket  int    `json:"socket" yaml:"socket"`
}
