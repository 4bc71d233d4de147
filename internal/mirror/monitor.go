package mirror

// MonitorInfo describes a connected display output.
type MonitorInfo struct {
	Index     int    `json:"index" yaml:"index"`
	Name      string `json:"name" yaml:"name"`
	Width     int    `json:"width" yaml:"width"`
	Height    int    `json:"height" yaml:"height"`
	X         int    `json:"x" yaml:"x"`
	Y         int    `json:"y" yaml:"y"`
	IsPrimary bool   `json:"isPrimary" yaml:"primary"`
}
