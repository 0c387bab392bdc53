package config

// Agent contains configuration specific to agent mode.
type Agent struct {
	// Once makes a listening agent exit after serving its first
	// controller session instead of waiting for the next one.
	Once bool
}

// Validate ...
func (aCfg *Agent) Validate() []error {
	return nil
}
