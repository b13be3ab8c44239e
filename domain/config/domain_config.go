package config

// DomainConfig holds configurable business rules and constraints
type DomainConfig struct {
	// Task constraints
	MinTitleLength    int
	MaxTitleLength    int
	MaxDescriptionLen int
	MinPriority       int
	MaxPriority       int

	// Conversation constraints
	MinMessageLength int
	MaxMessageLength int
	HistoryWindow    int
	MaxToolNameLen   int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinTitleLength:    1,
		MaxTitleLength:    200,
		MaxDescriptionLen: 1000,
		MinPriority:       1,
		MaxPriority:       5,

		MinMessageLength: 1,
		MaxMessageLength: 5000,
		HistoryWindow:    50,
		MaxToolNameLen:   100,
	}
}
